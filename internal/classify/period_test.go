package classify

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		text      string
		href      string
		neighbor  string
		year      int
		yearKnown bool
		want      Period
	}{
		{
			name:      "full-year span in filename",
			href:      "https://example.go.th/files/energy_2567_january_december.xlsx",
			year:      2024,
			yearKnown: true,
			want:      PeriodAnnual,
		},
		{
			name:      "thai full-year span in link text",
			text:      "สถิติพลังงาน มกราคม - ธันวาคม 2560",
			href:      "https://example.go.th/download.aspx?id=4",
			year:      2017,
			yearKnown: true,
			want:      PeriodAnnual,
		},
		{
			name:      "half-year span",
			text:      "Energy statistics January - June 2023",
			href:      "https://example.go.th/files/energy_jan_jun_2023.xlsx",
			year:      2023,
			yearKnown: true,
			want:      PeriodHalf,
		},
		{
			name:      "thai half-year token",
			text:      "สถิติพลังงาน ครึ่งปีแรก 2565",
			href:      "https://example.go.th/download.aspx?id=8",
			year:      2022,
			yearKnown: true,
			want:      PeriodHalf,
		},
		{
			name:      "lone month near the report year is monthly",
			href:      "https://example.go.th/files/oil_march_2567.xlsx",
			year:      2024,
			yearKnown: true,
			want:      PeriodMonthly,
		},
		{
			name:      "december near the year is not monthly",
			href:      "https://example.go.th/files/oil_december_2567.xlsx",
			year:      2024,
			yearKnown: true,
			want:      PeriodUnknown,
		},
		{
			name:      "month next to a different year than resolved",
			text:      "March 2565",
			href:      "https://example.go.th/files/report.xlsx",
			year:      2024,
			yearKnown: true,
			want:      PeriodUnknown,
		},
		{
			name:      "two distinct years defeats the monthly rule",
			text:      "March 2566 (revised 2567)",
			href:      "https://example.go.th/files/report.xlsx",
			year:      2023,
			yearKnown: true,
			want:      PeriodUnknown,
		},
		{
			name:      "strong annual keyword wins over a december mention",
			text:      "Thailand energy yearbook 2564, December edition",
			href:      "https://example.go.th/download.aspx?id=2",
			year:      2021,
			yearKnown: true,
			want:      PeriodAnnual,
		},
		{
			name:      "no month name defaults to annual",
			text:      "Electricity consumption 2562-2566",
			href:      "https://example.go.th/files/electricity.xlsx",
			year:      2019,
			yearKnown: true,
			want:      PeriodAnnual,
		},
		{
			name: "no year still classified by text alone",
			text: "Commercial energy balance",
			href: "https://example.go.th/files/balance.xlsx",
			want: PeriodAnnual,
		},
		{
			name: "month without any year is unknown",
			text: "ตุลาคม",
			href: "https://example.go.th/download.aspx?id=11",
			want: PeriodUnknown,
		},
	}

	var c Classifier
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := c.Classify(tt.text, tt.href, tt.neighbor, tt.year, tt.yearKnown)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestClassifyMonthWindowOverride(t *testing.T) {
	t.Parallel()

	// The month sits 30 characters from the year: inside a generous
	// window it reads as a monthly report, outside it falls through to
	// unknown (a month name is present, so the annual default never fires).
	text := "กรกฎาคม xxxxxxxxxxxxxxxxxxxxxxxxxxxxxx 2567"
	href := "https://example.go.th/download.aspx?id=3"

	loose := Classifier{MonthWindow: 60}
	assert.Equal(t, PeriodMonthly, loose.Classify(text, href, "", 2024, true))

	tight := Classifier{MonthWindow: 10}
	assert.Equal(t, PeriodUnknown, tight.Classify(text, href, "", 2024, true))
}
