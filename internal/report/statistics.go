package report

import (
	"fmt"
	"io"
	"strings"

	"salesinsights/internal/models"
)

// PrintStatistics writes the console statistics block for insights to w.
func PrintStatistics(w io.Writer, in *models.Insights) error {
	var b strings.Builder

	fmt.Fprintf(&b, "\n%s\n", doubleRule)
	fmt.Fprintln(&b, "DATA STATISTICS")
	fmt.Fprintln(&b, doubleRule)

	fmt.Fprintln(&b, "\nORDERS TABLE:")
	fmt.Fprintf(&b, "  Total Records: %s\n", Count(in.Orders.Records))
	fmt.Fprintf(&b, "  Total Sales: %s\n", Currency(in.Orders.TotalSales))
	fmt.Fprintf(&b, "  Total Profit: %s\n", Currency(in.Orders.TotalProfit))
	fmt.Fprintf(&b, "  Profit Margin: %s\n", Percent(in.Orders.ProfitMargin))
	fmt.Fprintf(&b, "  Average Order Value: %s\n", Currency(in.Orders.AverageSales))
	fmt.Fprintf(&b, "  Date Range: %s to %s\n", in.Orders.FirstOrderDate, in.Orders.LastOrderDate)

	fmt.Fprintln(&b, "\nPEOPLE TABLE:")
	fmt.Fprintf(&b, "  Total Regional Managers: %d\n", in.People.Records)
	fmt.Fprintf(&b, "  Regions: %s\n", strings.Join(in.People.Regions, ", "))

	fmt.Fprintln(&b, "\nRETURNS TABLE:")
	fmt.Fprintf(&b, "  Total Returns: %s\n", Count(in.Returns.Records))
	fmt.Fprintf(&b, "  Return Rate: %s\n", Percent(in.Returns.ReturnRate))

	fmt.Fprintf(&b, "\n%s\n", doubleRule)

	_, err := io.WriteString(w, b.String())
	return err
}
