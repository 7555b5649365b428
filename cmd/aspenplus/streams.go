package aspenplus

import (
	"cmp"
	"fmt"
	"log"
	"os"
	"sort"

	"github.com/distillab/aspenplus/pkg/sim"
	"github.com/spf13/cobra"
)

var (
	streamsCase    string
	streamsBackend string
	streamsSolve   bool
)

var streamsCmd = &cobra.Command{
	Use:   "streams",
	Short: "Print the stream table of a case",
	Long:  `Opens a case, solves it, and prints every stream the backend can read. Pass --solve=false to print the table as loaded. The mock backend ships a built-in two-stream fixture, so the command works without the simulator installed.`,
	RunE:  runStreams,
}

func runStreams(cmd *cobra.Command, args []string) error {
	if cfg == nil {
		log.Fatal("Configuration not loaded")
	}
	logger := newLogger()
	defer logger.Sync()

	backend := cmp.Or(streamsBackend, cfg.Engine.Backend)
	casePath := cmp.Or(streamsCase, cfg.Engine.Case)

	if backend == sim.BackendCOM {
		if casePath == "" {
			fmt.Fprintln(os.Stderr, "no flowsheet: set engine.case or --case")
			os.Exit(2)
		}
		if _, err := os.Stat(casePath); err != nil {
			fmt.Fprintln(os.Stderr, "flowsheet not found:", casePath)
			os.Exit(2)
		}
	}

	client, err := sim.NewClient(backend, sim.Options{
		ProgID:          cfg.Engine.ProgID,
		Visible:         cfg.Engine.Visible,
		SuppressDialogs: cfg.Engine.SuppressDialogs,
		ProbeStreams:    cfg.Engine.ProbeStreams,
		ProbeComponents: cfg.Engine.ProbeComponents,
		Logger:          logger,
	})
	if err != nil {
		return err
	}

	return client.Session(func(c *sim.Client) error {
		if err := c.OpenCase(casePath); err != nil {
			return err
		}
		if streamsSolve {
			if err := c.Run(); err != nil {
				return err
			}
		}
		streams, err := c.Streams()
		if err != nil {
			return err
		}
		sort.Slice(streams, func(i, j int) bool { return streams[i].Name < streams[j].Name })
		for _, s := range streams {
			printStream(s)
		}
		return nil
	})
}

func printStream(s sim.Stream) {
	fmt.Printf("%s: flow=%g", s.Name, s.Flow)
	if s.Temperature != nil {
		fmt.Printf(" T=%g", *s.Temperature)
	}
	if s.Pressure != nil {
		fmt.Printf(" P=%g", *s.Pressure)
	}
	fmt.Println()

	comps := make([]string, 0, len(s.Composition))
	for name := range s.Composition {
		comps = append(comps, name)
	}
	sort.Strings(comps)
	for _, name := range comps {
		fmt.Printf("  %s: %g\n", name, s.Composition[name])
	}
}

func init() {
	f := streamsCmd.Flags()
	f.StringVarP(&streamsCase, "case", "c", "", "flowsheet case file, e.g. column.bkp")
	f.StringVarP(&streamsBackend, "backend", "b", "", `engine backend ("com" or "mock")`)
	f.BoolVar(&streamsSolve, "solve", true, "run the solver before reading streams")

	rootCmd.AddCommand(streamsCmd)
}
