package models

// TrustInputs are the historical signals the trust score is computed from.
type TrustInputs struct {
	YearsActive      int
	AEOTier          int
	Violations       int
	CleanInspections int
}

// TrustScore returns clamp(years*10 + tier*20 - violations*15 + clean*0.5, 0, 100).
func TrustScore(in TrustInputs) float64 {
	score := float64(in.YearsActive)*10 +
		float64(in.AEOTier)*20 -
		float64(in.Violations)*15 +
		float64(in.CleanInspections)*0.5
	return clamp(score, 0, 100)
}

// TrustInputs derives the calculator inputs from the profile's counters and
// its appended history.
func (p *Profile) TrustInputs() TrustInputs {
	tier := p.AEOTier
	for _, c := range p.AEOCertificates {
		if c.Tier > tier {
			tier = c.Tier
		}
	}
	clean := p.CleanInspections
	for _, i := range p.InspectionLogs {
		if i.Outcome == OutcomeClean {
			clean++
		}
	}
	return TrustInputs{
		YearsActive:      p.YearsActive,
		AEOTier:          tier,
		Violations:       p.PriorViolations + len(p.ViolationHistory),
		CleanInspections: clean,
	}
}

// Recompute sets TrustScore from scratch.
func (p *Profile) Recompute() {
	p.TrustScore = TrustScore(p.TrustInputs())
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
