package report

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/jonboulle/clockwork"
	"github.com/lestrrat-go/strftime"
	"github.com/spf13/afero"

	apperrors "salesinsights/internal/errors"
	"salesinsights/internal/models"
)

// TimestampPattern is the strftime pattern of the "Generated:" line.
const TimestampPattern = "%Y-%m-%d %H:%M:%S"

var timestamp = mustStrftime(TimestampPattern)

func mustStrftime(pattern string) *strftime.Strftime {
	f, err := strftime.New(pattern)
	if err != nil {
		panic(fmt.Sprintf("strftime pattern %q: %v", pattern, err))
	}
	return f
}

// Exporter writes the text insights report.
type Exporter struct {
	fs     afero.Fs
	path   string
	clock  clockwork.Clock
	out    io.Writer
	logger *slog.Logger
}

func NewExporter(fsys afero.Fs, path string, clock clockwork.Clock, out io.Writer, logger *slog.Logger) *Exporter {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if out == nil {
		out = io.Discard
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Exporter{
		fs:     fsys,
		path:   path,
		clock:  clock,
		out:    out,
		logger: logger,
	}
}

// Export truncates the report file and writes insights to it. A failure
// part way through leaves whatever was already written.
func (e *Exporter) Export(ctx context.Context, in *models.Insights) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	file, err := e.fs.OpenFile(e.path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return "", apperrors.WriteFailure(err, e.path)
	}

	counter := &countingWriter{w: file}
	buf := bufio.NewWriter(counter)
	err = WriteInsights(buf, in, e.clock.Now())
	if err == nil {
		err = buf.Flush()
	}
	if closeErr := file.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return "", apperrors.WriteFailure(err, e.path)
	}

	e.logger.Info("insights report written",
		"path", e.path,
		"size", humanize.Bytes(uint64(counter.n)))

	fmt.Fprintf(e.out, "\nInsights exported to: %s\n", e.path)
	return e.path, nil
}

// WriteInsights renders the report body, stamped with generated.
func WriteInsights(w io.Writer, in *models.Insights, generated time.Time) error {
	ew := &errWriter{w: w}

	ew.println("DATA INSIGHTS AND STATISTICS")
	ew.println(doubleRule + "\n")

	ew.println("Generated: " + timestamp.FormatString(generated) + "\n")

	ew.println("ORDERS ANALYSIS")
	ew.println(singleRule)
	ew.printf("Total Orders: %d\n", in.Orders.Records)
	ew.printf("Total Sales: %s\n", Currency(in.Orders.TotalSales))
	ew.printf("Total Profit: %s\n", Currency(in.Orders.TotalProfit))
	ew.printf("Profit Margin: %s\n", Percent(in.Orders.ProfitMargin))
	ew.printf("Average Sales per Order: %s\n", Currency(in.Orders.AverageSales))
	ew.printf("Total Quantity: %d\n", in.Orders.TotalQuantity)
	ew.printf("Average Discount: %s\n\n", Percent(in.Orders.AverageDiscount))

	ew.section("SALES BY CATEGORY", in.ByCategory)
	ew.println("")
	ew.section("SALES BY REGION", in.ByRegion)
	ew.println("")
	ew.section("SALES BY SEGMENT", in.BySegment)

	return ew.err
}

// errWriter keeps the first write error and skips everything after it.
type errWriter struct {
	w   io.Writer
	err error
}

func (ew *errWriter) printf(format string, args ...any) {
	if ew.err != nil {
		return
	}
	_, ew.err = fmt.Fprintf(ew.w, format, args...)
}

func (ew *errWriter) println(s string) {
	ew.printf("%s\n", s)
}

func (ew *errWriter) section(title string, groups []models.GroupTotal) {
	ew.println(title)
	ew.println(singleRule)
	for _, g := range groups {
		ew.printf("%s: %s (%d orders)\n", g.Key, Currency(g.Sales), g.Count)
	}
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}
