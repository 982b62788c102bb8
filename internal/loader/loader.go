// Package loader reads the orders, people and returns CSV files into data frames.
package loader

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"slices"
	"time"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"github.com/spf13/afero"
	"golang.org/x/sync/errgroup"

	"salesinsights/internal/config"
	apperrors "salesinsights/internal/errors"
)

const (
	ColOrderID   = "Order ID"
	ColOrderDate = "Order Date"
	ColSales     = "Sales"
	ColProfit    = "Profit"
	ColQuantity  = "Quantity"
	ColDiscount  = "Discount"
	ColCategory  = "Category"
	ColRegion    = "Region"
	ColSegment   = "Segment"
)

// ProgressMessage is printed before any file is read.
const ProgressMessage = "Loading data..."

var (
	orderColumns  = []string{ColOrderID, ColOrderDate, ColSales, ColProfit, ColQuantity, ColDiscount, ColCategory, ColRegion, ColSegment}
	peopleColumns = []string{ColRegion}
	returnColumns = []string{ColOrderID}

	// Cells treated as missing, like a data-frame reader does by default.
	nanValues = []string{"", "NA", "N/A", "NaN", "nan", "null", "NULL", "<nil>"}

	orderTypes = map[string]series.Type{
		ColOrderID:   series.String,
		ColOrderDate: series.String,
		ColSales:     series.Float,
		ColProfit:    series.Float,
		ColQuantity:  series.Float,
		ColDiscount:  series.Float,
		ColCategory:  series.String,
		ColRegion:    series.String,
		ColSegment:   series.String,
	}
	peopleTypes = map[string]series.Type{ColRegion: series.String}
	returnTypes = map[string]series.Type{ColOrderID: series.String}
)

// Dataset holds the three loaded tables.
type Dataset struct {
	Orders  dataframe.DataFrame
	People  dataframe.DataFrame
	Returns dataframe.DataFrame
}

type Loader struct {
	fs     afero.Fs
	cfg    config.DataConfig
	out    io.Writer
	logger *slog.Logger
}

// New returns a Loader reading cfg's files from fsys. Progress is written to out.
func New(fsys afero.Fs, cfg config.DataConfig, out io.Writer, logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	if out == nil {
		out = io.Discard
	}
	return &Loader{
		fs:     fsys,
		cfg:    cfg,
		out:    out,
		logger: logger,
	}
}

// Load reads all three files. Either every table is returned or none is.
func (l *Loader) Load(ctx context.Context) (*Dataset, error) {
	fmt.Fprintln(l.out, ProgressMessage)

	start := time.Now()
	var ds Dataset

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		df, err := l.readTable(ctx, l.cfg.OrdersPath(), orderTypes, orderColumns)
		ds.Orders = df
		return err
	})
	g.Go(func() error {
		df, err := l.readTable(ctx, l.cfg.PeoplePath(), peopleTypes, peopleColumns)
		ds.People = df
		return err
	})
	g.Go(func() error {
		df, err := l.readTable(ctx, l.cfg.ReturnsPath(), returnTypes, returnColumns)
		ds.Returns = df
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	l.logger.Info("data loaded",
		"dir", l.cfg.Dir,
		"orders", ds.Orders.Nrow(),
		"people", ds.People.Nrow(),
		"returns", ds.Returns.Nrow(),
		"duration", time.Since(start))

	return &ds, nil
}

// LatestModTime reports the newest modification time among the input files.
func (l *Loader) LatestModTime() (time.Time, error) {
	var latest time.Time
	for _, path := range []string{l.cfg.OrdersPath(), l.cfg.PeoplePath(), l.cfg.ReturnsPath()} {
		info, err := l.fs.Stat(path)
		if err != nil {
			return time.Time{}, classifyOpenError(err, path)
		}
		if info.ModTime().After(latest) {
			latest = info.ModTime()
		}
	}
	return latest, nil
}

func (l *Loader) readTable(ctx context.Context, path string, types map[string]series.Type, required []string) (dataframe.DataFrame, error) {
	if err := ctx.Err(); err != nil {
		return dataframe.DataFrame{}, err
	}

	file, err := l.fs.Open(path)
	if err != nil {
		return dataframe.DataFrame{}, classifyOpenError(err, path)
	}
	defer file.Close()

	l.logger.Debug("reading table", "path", path)

	records, err := csv.NewReader(file).ReadAll()
	if err != nil {
		return dataframe.DataFrame{}, apperrors.Parse(err, path)
	}

	var df dataframe.DataFrame
	if len(records) == 1 {
		// gota refuses a header without rows; an empty table is still valid input.
		df = emptyFrame(records[0], types)
	} else {
		df = dataframe.LoadRecords(records,
			dataframe.HasHeader(true),
			dataframe.WithTypes(types),
			dataframe.NaNValues(nanValues),
		)
	}
	if df.Err != nil {
		return dataframe.DataFrame{}, apperrors.Parse(df.Err, path)
	}

	names := df.Names()
	for _, col := range required {
		if !slices.Contains(names, col) {
			return dataframe.DataFrame{}, apperrors.Parse(fmt.Errorf("missing column %q", col), path)
		}
	}

	return df, nil
}

// emptyFrame builds a zero-row frame with one column per header name.
func emptyFrame(header []string, types map[string]series.Type) dataframe.DataFrame {
	cols := make([]series.Series, 0, len(header))
	for _, name := range header {
		t, ok := types[name]
		if !ok {
			t = series.String
		}
		cols = append(cols, series.New([]string{}, t, name))
	}
	return dataframe.New(cols...)
}

func classifyOpenError(err error, path string) error {
	if errors.Is(err, fs.ErrNotExist) {
		return apperrors.MissingFile(err, path)
	}
	return apperrors.Parse(err, path)
}
