package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"clearance/internal/risk"
	"clearance/internal/risk/intel"
	"clearance/internal/risk/origin"
)

var (
	scoreFile       string
	scoreOriginFile string
	scoreRed        float64
	scoreYellow     float64
	scoreIntel      bool
	scoreFormat     string
)

func init() {
	rootCmd.AddCommand(scoreCmd)
	scoreCmd.Flags().StringVar(&scoreFile, "file", "-", "Shipment JSON file, - for stdin")
	scoreCmd.Flags().StringVar(&scoreOriginFile, "origin-file", "", "YAML origin coefficient overrides (optional)")
	scoreCmd.Flags().Float64Var(&scoreRed, "red", risk.DefaultThresholds.Red, "RED lane threshold")
	scoreCmd.Flags().Float64Var(&scoreYellow, "yellow", risk.DefaultThresholds.Yellow, "YELLOW lane threshold")
	scoreCmd.Flags().BoolVar(&scoreIntel, "intel", false, "Enable intelligence list screening")
	scoreCmd.Flags().StringVarP(&scoreFormat, "format", "f", "text", "Output format (text|json)")
}

var scoreCmd = &cobra.Command{
	Use:   "score",
	Short: "Score a shipment without contacting the server",
	Long: "Reads a shipment request in the POST /score wire format and prints the\n" +
		"decision. The trust score is taken from blockchain_trust_score or\n" +
		"defaults to neutral; the identity store is not consulted.",
	Args: cobra.NoArgs,
	RunE: runScore,
}

func runScore(cmd *cobra.Command, _ []string) error {
	in := cmd.InOrStdin()
	if scoreFile != "-" {
		f, err := os.Open(scoreFile)
		if err != nil {
			return err
		}
		defer f.Close()
		in = f
	}

	var req risk.ShipmentRequest
	if err := json.NewDecoder(in).Decode(&req); err != nil {
		return fmt.Errorf("decode shipment: %w", err)
	}
	if err := req.Validate(); err != nil {
		return err
	}

	opts := []risk.EngineOption{risk.WithThresholds(risk.Thresholds{Red: scoreRed, Yellow: scoreYellow})}
	if scoreOriginFile != "" {
		table, err := origin.Load(scoreOriginFile)
		if err != nil {
			return err
		}
		opts = append(opts, risk.WithOriginTable(table))
	}
	if scoreIntel {
		opts = append(opts, risk.WithScreener(intel.NewScreener()))
	}
	engine, err := risk.NewEngine(opts...)
	if err != nil {
		return err
	}

	d := engine.Score(req, req.TrustScore)
	if scoreFormat == "json" {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(d)
	}
	return writeDecision(cmd.OutOrStdout(), d)
}

func writeDecision(w io.Writer, d risk.Decision) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "container\t%s\n", d.ContainerID)
	fmt.Fprintf(tw, "lane\t%s\n", d.Lane)
	fmt.Fprintf(tw, "risk score\t%.2f\n", d.RiskScore)
	fmt.Fprintf(tw, "model\t%s\n", d.ModelUsed)
	fmt.Fprintln(tw, "\t")
	for _, c := range d.Contributions {
		fmt.Fprintf(tw, "%s\t%+.2f\n", c.Feature, c.Contribution)
	}
	return tw.Flush()
}
