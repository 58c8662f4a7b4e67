package cli

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/kjk/catalog/atomicfile"
	"github.com/kjk/catalog/export"
	"github.com/kjk/catalog/record"
	"github.com/kjk/catalog/sheet"
	"github.com/kjk/catalog/view"
)

// flagName turns a field name into a flag name: start_date => start-date
func flagName(field string) string {
	return strings.ReplaceAll(field, "_", "-")
}

func kindArg(args []string) (record.Kind, error) {
	return record.ParseKind(args[0])
}

func newAddCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a book, article or magazine",
	}
	for _, kind := range record.Kinds {
		cmd.AddCommand(newAddKindCommand(a, kind))
	}
	return cmd
}

func newAddKindCommand(a *app, kind record.Kind) *cobra.Command {
	values := map[string]*string{}
	cmd := &cobra.Command{
		Use:   string(kind),
		Short: "Add a " + string(kind),
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := a.open()
			if err != nil {
				return err
			}
			f := record.Fields{}
			for name, v := range values {
				f[name] = *v
			}
			id, err := e.store.Add(kind, f)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(a.out, "added %s %s\n", kind, id)
			return err
		},
	}
	for _, name := range kind.FieldNames() {
		usage := record.Label(name)
		switch {
		case name == record.FieldDate:
			usage += " (" + record.MonthYearFormat + ")"
		case record.IsDateField(name):
			usage += " (" + record.DateFormat + ")"
		}
		values[name] = cmd.Flags().String(flagName(name), "", usage)
	}
	return cmd
}

type filterOptions struct {
	genre  string
	search string
}

func (o *filterOptions) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&o.genre, "genre", "g", view.AllGenres, "only records of this genre")
	cmd.Flags().StringVarP(&o.search, "search", "s", "", "only records containing this text in any field")
}

func (o *filterOptions) query(kind record.Kind) view.Query {
	return view.Query{Kind: kind, Genre: o.genre, Search: o.search}
}

func newListCommand(a *app) *cobra.Command {
	var filter filterOptions
	cmd := &cobra.Command{
		Use:   "list <book|article|magazine>",
		Short: "List records; numbers are positions used by delete",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := kindArg(args)
			if err != nil {
				return err
			}
			e, err := a.open()
			if err != nil {
				return err
			}
			q := filter.query(kind)
			matches := view.ApplyIndexed(e.store.Records(kind), q)
			recs := make([]*record.Record, len(matches))
			nums := make([]int, len(matches))
			for i, m := range matches {
				recs[i] = m.Record
				nums[i] = m.Index + 1
			}
			doc := export.NewDocument(q, recs, time.Now())
			doc.Numbers = nums
			return export.Write(a.out, export.FormatText, doc)
		},
	}
	filter.register(cmd)
	return cmd
}

func newStatsCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show number of records and where they are stored",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := a.open()
			if err != nil {
				return err
			}
			counts := e.store.Counts()
			fmt.Fprintf(a.out, "store:  %s\n", e.store.Path())
			fmt.Fprintf(a.out, "genres: %s (%d)\n", e.genres.Path(), e.genres.Len())
			for _, kind := range record.Kinds {
				fmt.Fprintf(a.out, "%s: %d\n", strings.ToLower(kind.Plural()), counts[kind])
			}
			if err := e.store.LoadError(); err != nil {
				fmt.Fprintf(a.out, "load error: %s\n", err)
			}
			return nil
		},
	}
}

// parsePositions converts 1-based positions shown by list to indices
func parsePositions(args []string) ([]int, error) {
	var res []int
	for _, s := range args {
		n, err := strconv.Atoi(s)
		if err != nil || n < 1 {
			return nil, fmt.Errorf("invalid position '%s'", s)
		}
		res = append(res, n-1)
	}
	return res, nil
}

func newDeleteCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <book|article|magazine> <position>...",
		Short: "Delete records at positions shown by list",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := kindArg(args)
			if err != nil {
				return err
			}
			indices, err := parsePositions(args[1:])
			if err != nil {
				return err
			}
			e, err := a.open()
			if err != nil {
				return err
			}
			if err = e.store.DeleteMany(kind, indices); err != nil {
				return err
			}
			uniq := map[int]bool{}
			for _, idx := range indices {
				uniq[idx] = true
			}
			_, err = fmt.Fprintf(a.out, "deleted %d %s\n", len(uniq), strings.ToLower(kind.Plural()))
			return err
		},
	}
}

func newImportCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "import <book|article|magazine> <file.xlsx|file.csv>",
		Short: "Import records from a spreadsheet",
		Long: `Import records from the first sheet of a spreadsheet. The first row
names the columns, matched case-insensitively:

  book, article: title (kitap / makale), author (yazar), genre (tür),
                 start date (başlama tarihi), end date (bitirme tarihi)
  magazine:      name (dergi), issue (sayı), volume (cilt), date (tarih),
                 start date, end date

Dates in common formats are converted to DD/MM/YYYY. Rows that fail
validation are reported and skipped; the valid rows are still imported
but the command exits with an error.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := kindArg(args)
			if err != nil {
				return err
			}
			rows, err := sheet.Read(args[1])
			if err != nil {
				return err
			}
			e, err := a.open()
			if err != nil {
				return err
			}
			report, err := e.store.ImportRows(kind, rows)
			if err != nil {
				return err
			}
			if _, err = fmt.Fprintln(a.out, report.String()); err != nil {
				return err
			}
			if report.Err() != nil {
				return fmt.Errorf("%d of %d rows failed to import", len(report.Errors), len(rows)-report.Skipped)
			}
			return nil
		},
	}
}

func newExportCommand(a *app) *cobra.Command {
	var filter filterOptions
	var format string
	var output string
	cmd := &cobra.Command{
		Use:   "export <book|article|magazine>",
		Short: "Export the filtered list as text, toon, json or csv",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := kindArg(args)
			if err != nil {
				return err
			}
			f := export.FormatText
			switch {
			case format != "":
				if f, err = export.ParseFormat(format); err != nil {
					return err
				}
			case output != "":
				f = export.FormatFromPath(output)
			}
			e, err := a.open()
			if err != nil {
				return err
			}
			q := filter.query(kind)
			doc := export.NewDocument(q, view.Apply(e.store.Records(kind), q.Genre, q.Search), time.Now())
			if output == "" {
				return export.Write(a.out, f, doc)
			}
			if err = writeExportFile(output, f, doc); err != nil {
				return err
			}
			_, err = fmt.Fprintf(a.out, "exported %d %s to %s\n", len(doc.Rows), strings.ToLower(kind.Plural()), output)
			return err
		},
	}
	filter.register(cmd)
	var names []string
	for _, f := range export.Formats {
		names = append(names, string(f))
	}
	sort.Strings(names)
	cmd.Flags().StringVarP(&format, "format", "f", "", "one of: "+strings.Join(names, ", ")+" (default from --output extension, else text)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "write to a file instead of stdout")
	return cmd
}

func writeExportFile(path string, f export.Format, doc *export.Document) error {
	af, err := atomicfile.New(path)
	if err != nil {
		return err
	}
	defer af.RemoveIfNotClosed()
	if err = export.Write(af, f, doc); err != nil {
		return err
	}
	return af.Close()
}
