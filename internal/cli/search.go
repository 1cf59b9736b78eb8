package cli

import (
	"fmt"
	"math"
	"os"
	"os/signal"
	"time"

	"github.com/dustin/go-humanize"
	jsoniter "github.com/json-iterator/go"
	"github.com/spf13/cobra"

	"github.com/pedrokkrause/fourier-ephem/internal/eclipse"
	"github.com/pedrokkrause/fourier-ephem/internal/epoch"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

var (
	searchFrom    string
	searchTo      string
	searchWorkers int
	searchJSON    bool
)

var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "Search a date range for solar eclipses",
	Long: `Scans the range for new moons close to the Sun, then checks a global grid of
observers around each one. Every confirmed eclipse is reported with the first
hour at which some grid point saw the Sun partly covered.`,
	Args: cobra.NoArgs,
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().StringVar(&searchFrom, "from", "", "start of the range (required)")
	searchCmd.Flags().StringVar(&searchTo, "to", "", "end of the range (required)")
	searchCmd.Flags().IntVarP(&searchWorkers, "workers", "w", 0, "refinement workers (0 uses the config)")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "output results as JSON")
	_ = searchCmd.MarkFlagRequired("from")
	_ = searchCmd.MarkFlagRequired("to")
	rootCmd.AddCommand(searchCmd)
}

type searchOutput struct {
	From       string          `json:"from"`
	To         string          `json:"to"`
	Candidates int             `json:"candidates"`
	Dropped    int             `json:"dropped"`
	Eclipses   []eclipseOutput `json:"eclipses"`
}

type eclipseOutput struct {
	Time      string         `json:"time"`
	Candidate string         `json:"candidate"`
	Observer  eclipse.LatLon `json:"observer"`
}

func runSearch(cmd *cobra.Command, _ []string) error {
	from, err := epoch.Parse(searchFrom)
	if err != nil {
		return fmt.Errorf("invalid --from: %w", err)
	}
	to, err := epoch.Parse(searchTo)
	if err != nil {
		return fmt.Errorf("invalid --to: %w", err)
	}

	sc := cfg.Search.Eclipse()
	if searchWorkers > 0 {
		sc.Workers = searchWorkers
	}
	searcher := eclipse.NewSearcher(model, sc, logger)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	res, err := searcher.Search(ctx, from, to)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if searchJSON {
		return outputSearchJSON(cmd, from, to, res)
	}
	outputSearchTable(cmd, from, to, res)
	return nil
}

func outputSearchJSON(cmd *cobra.Command, from, to float64, res eclipse.Result) error {
	out := searchOutput{
		From:       epoch.Format(from),
		To:         epoch.Format(to),
		Candidates: len(res.Candidates),
		Dropped:    res.Dropped,
		Eclipses:   make([]eclipseOutput, 0, len(res.Eclipses)),
	}
	for _, e := range res.Eclipses {
		out.Eclipses = append(out.Eclipses, eclipseOutput{
			Time:      epoch.Format(e.Time),
			Candidate: epoch.Format(e.Candidate),
			Observer:  e.Observer,
		})
	}
	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal results: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func outputSearchTable(cmd *cobra.Command, from, to float64, res eclipse.Result) {
	cmd.Printf("Scanned %s to %s (%s days): %d candidates, %d eclipses, %d dropped\n",
		epoch.ToTime(from).Format(dateLayout),
		epoch.ToTime(to).Format(dateLayout),
		humanize.Comma(int64(math.Round(to-from))),
		len(res.Candidates), len(res.Eclipses), res.Dropped)

	if len(res.Eclipses) == 0 {
		cmd.Println("No eclipses found.")
		return
	}

	cmd.Println()
	for i, e := range res.Eclipses {
		when := epoch.ToTime(e.Time).Round(time.Minute)
		cmd.Printf("  [%d] %s  seen from %s", i+1, when.Format(minuteLayout), formatLatLon(e.Observer.Lat, e.Observer.Lon))
		if i > 0 {
			prev := epoch.ToTime(res.Eclipses[i-1].Time)
			cmd.Printf("  (%s)", humanize.RelTime(prev, when, "later", "earlier"))
		}
		cmd.Println()
	}
}
