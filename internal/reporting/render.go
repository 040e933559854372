package reporting

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Dollar amounts print with thousands separators, as in the reports the
// analysts already circulate.
var printer = message.NewPrinter(language.English)

func money(value float64) string {
	return printer.Sprintf("$%.2f", value)
}

// WriteText renders the report in the established plain-text layout. The
// score and exposure sections each keep their historical wording, including
// the exposure section's raw-fraction loss ratio.
func WriteText(w io.Writer, report *Report) error {
	buf := bufio.NewWriter(w)
	if report.Mode == RankByScore || report.Mode == RankBoth {
		writeScoreSection(buf, report)
	}
	if report.Mode == RankByExposure || report.Mode == RankBoth {
		writeExposureSection(buf, report)
	}
	return buf.Flush()
}

func writeScoreSection(buf *bufio.Writer, report *Report) {
	fmt.Fprintln(buf)
	fmt.Fprintln(buf, "=== CUSTOMER SEGMENTATION SUMMARY ===")
	fmt.Fprintln(buf)
	fmt.Fprintln(buf, "Number of customers in each segment:")
	for _, entry := range report.Distribution {
		fmt.Fprintf(buf, "- %s: %d customers\n", entry.Segment, entry.Count)
	}

	fmt.Fprintln(buf)
	fmt.Fprintln(buf, "Highest-risk customers (immediate review recommended):")
	for _, customer := range report.TopByScore {
		fmt.Fprintln(buf)
		fmt.Fprintf(buf, "Customer ID: %s\n", customer.CustomerID)
		fmt.Fprintf(buf, "Risk Score: %.1f\n", customer.RiskScore)
		fmt.Fprintf(buf, "Segment: %s\n", customer.Segment)
		fmt.Fprintf(buf, "Lifetime Value: %s\n", money(customer.LifetimeValue))
		lossPct := 0.0
		if customer.LossRatio != nil {
			lossPct = *customer.LossRatio * 100
		}
		fmt.Fprintf(buf, "Loss Ratio: %.1f%%\n", lossPct)
		fmt.Fprintln(buf, "Recommended Action: Manual review required - consider policy adjustment or investigation")
	}

	fmt.Fprintln(buf)
	fmt.Fprintln(buf, "=== END OF SUMMARY ===")
	fmt.Fprintln(buf)
}

func writeExposureSection(buf *bufio.Writer, report *Report) {
	fmt.Fprintln(buf, "CUSTOMER SEGMENT ANALYSIS")
	fmt.Fprintln(buf, strings.Repeat("-", 80))

	fmt.Fprintln(buf)
	fmt.Fprintln(buf, "CUSTOMER SEGMENT DISTRIBUTION:")
	for _, entry := range report.Distribution {
		fmt.Fprintf(buf, "- %s: %d customers\n", entry.Segment, entry.Count)
	}

	fmt.Fprintln(buf)
	fmt.Fprintln(buf, "HIGHEST-RISK CUSTOMERS:")
	for _, customer := range report.TopByExposure {
		fmt.Fprintln(buf)
		fmt.Fprintf(buf, "Customer ID: %s\n", customer.CustomerID)
		fmt.Fprintf(buf, "Segment: %s\n", customer.Segment)
		fmt.Fprintf(buf, "Lifetime Value: %s\n", money(customer.LifetimeValue))
		if customer.LossRatio != nil {
			fmt.Fprintf(buf, "Loss Ratio: %.2f%%\n", *customer.LossRatio)
		}
	}

	fmt.Fprintln(buf)
	fmt.Fprintln(buf, "RECOMMENDED NEXT STEPS:")
	fmt.Fprintf(buf, "1. Immediate manual review of the top %d highest-risk customers\n", report.TopN)
	fmt.Fprintln(buf, "2. Investigate customers with missing loss ratio values")
	fmt.Fprintln(buf, "3. Consider risk mitigation strategies for 'Risk Management' segment")
	fmt.Fprintln(buf, "4. Review underwriting criteria for 'Watch List' segment")
}
