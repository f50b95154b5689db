// Package risk maps operator safety metrics to a priority tier, a display
// color and an inspection cadence. Everything here is a pure function.
package risk

import "github.com/shopspring/decimal"

// Policy names accepted by PolicyByName
const (
	PolicyExposure = "exposure"
	PolicySMS      = "sms"
	PolicyFindings = "findings"
)

// Inputs carries the classifier inputs. A missing metric is its zero value.
type Inputs struct {
	Probability    int `json:"probability"`
	Severity       int `json:"severity"`
	Aircraft       int `json:"aircraft"`
	MonthlyFlights int `json:"monthly_flights"`
	Stations       int `json:"stations"`
	Findings       int `json:"findings"`
}

// SMSScore is probability times severity.
func (in Inputs) SMSScore() int {
	return in.Probability * in.Severity
}

var (
	five  = decimal.NewFromInt(5)
	seven = decimal.NewFromInt(7)
	four  = decimal.NewFromInt(4)
)

// ExposurePoints scores fleet size, flight volume and station count, clamped to [1,5].
func ExposurePoints(aircraft, monthlyFlights, stations int) int {
	points := 0

	switch {
	case aircraft > 10:
		points += 2
	case aircraft > 3:
		points++
	}

	switch {
	case monthlyFlights > 200:
		points += 2
	case monthlyFlights > 50:
		points++
	}

	if stations > 5 {
		points++
	}

	if points < 1 {
		return 1
	}
	if points > 5 {
		return 5
	}
	return points
}

// ClassifyExposure combines the SMS score with operational exposure.
// total = sms/5 + exposure; total >= 7 or sms >= 15 is Very High, total >= 4 is Medium.
func ClassifyExposure(in Inputs) Assessment {
	sms := in.SMSScore()
	exposure := ExposurePoints(in.Aircraft, in.MonthlyFlights, in.Stations)
	total := decimal.NewFromInt(int64(sms)).Div(five).Add(decimal.NewFromInt(int64(exposure)))

	switch {
	case total.GreaterThanOrEqual(seven) || sms >= 15:
		return assess(PolicyExposure, TierVeryHigh, LevelTop, sms, total)
	case total.GreaterThanOrEqual(four):
		return assess(PolicyExposure, TierMedium, LevelMid, sms, total)
	default:
		return assess(PolicyExposure, TierLow, LevelLow, sms, total)
	}
}

// ClassifySMS scores on probability x severity alone.
func ClassifySMS(probability, severity int) Assessment {
	score := probability * severity
	d := decimal.NewFromInt(int64(score))

	switch {
	case score >= 15:
		return assess(PolicySMS, TierCritical, LevelTop, score, d)
	case score >= 6:
		return assess(PolicySMS, TierHigh, LevelMid, score, d)
	default:
		return assess(PolicySMS, TierNormal, LevelLow, score, d)
	}
}

// ClassifyFindings scores on the number of inspection findings.
// The SMS score is not part of the rule and is reported as 0.
func ClassifyFindings(findings int) Assessment {
	d := decimal.NewFromInt(int64(findings))

	switch {
	case findings > 10:
		return assess(PolicyFindings, TierCritical, LevelTop, 0, d)
	case findings > 5:
		return assess(PolicyFindings, TierHigh, LevelMid, 0, d)
	default:
		return assess(PolicyFindings, TierNormal, LevelLow, 0, d)
	}
}
