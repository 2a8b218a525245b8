package main

import (
	"fmt"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"github.com/twpayne/go-geom"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/starlinker/internal/directory"
	"github.com/sells-group/starlinker/internal/fixture"
	"github.com/sells-group/starlinker/internal/model"
	"github.com/sells-group/starlinker/internal/overrides"
	"github.com/sells-group/starlinker/internal/reconcile"
	"github.com/sells-group/starlinker/internal/report"
	"github.com/sells-group/starlinker/internal/source"
	"github.com/sells-group/starlinker/pkg/nox"
	"github.com/sells-group/starlinker/pkg/starlink"
	"github.com/sells-group/starlinker/pkg/venus"
)

var (
	reconcileOffline bool
	reconcileFixture string
	reconcileHidden  string
	reconcilePush    bool
	reconcileOutput  string
	reconcileFormat  string
	reconcileNoStore bool
)

var reconcileCmd = &cobra.Command{
	Use:   "reconcile",
	Short: "Run one reconciliation pass",
	Long:  "Pulls device and router data, matches devices to routers by nickname text and coordinates, recommends canonical nicknames, and writes a report.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		mode := "reconcile"
		if reconcileOffline {
			mode = "offline"
		}
		if err := cfg.Validate(mode); err != nil {
			return err
		}
		if reconcileOffline && reconcilePush {
			return eris.New("cannot push nicknames in offline mode")
		}

		var sl starlink.Client
		if !reconcileOffline {
			sl = starlink.NewClient(cfg.Starlink.Token,
				starlink.WithBaseURL(cfg.Starlink.BaseURL),
				starlink.WithRateLimit(cfg.Starlink.RateLimit),
			)
		}

		snap, err := loadSnapshot(cmd, sl)
		if err != nil {
			return err
		}

		hiddenPath := reconcileHidden
		if hiddenPath == "" {
			hiddenPath = cfg.Overrides.File
		}
		if hiddenPath != "" {
			nicknames, err := overrides.Load(hiddenPath)
			if err != nil {
				return err
			}
			applied := overrides.Apply(snap.Devices, nicknames)
			zap.L().Info("applied nickname overrides",
				zap.String("file", hiddenPath),
				zap.Int("applied", applied),
			)
		}

		res := reconcile.Run(snap)

		if reconcilePush {
			if err := pushNicknames(cmd, sl, res); err != nil {
				return err
			}
			res.Run.Summary = model.Summarize(res.Devices)
		}

		if !reconcileNoStore {
			st, err := initStore(ctx)
			if err != nil {
				return err
			}
			defer st.Close() //nolint:errcheck
			if err := st.Migrate(ctx); err != nil {
				return err
			}
			if err := st.SaveRun(ctx, &res.Run, res.Devices); err != nil {
				return err
			}
		}

		if err := writeReport(res.Devices, snap.DeviceCoords); err != nil {
			return err
		}

		s := res.Run.Summary
		fmt.Printf("run %s: %d devices, %d can update, %d already correct, %d unmatched, %d pushed\n",
			res.Run.ID, s.Devices, s.CanUpdate, s.NoUpdateRequired, s.CannotUpdate, s.Pushed)
		return nil
	},
}

// loadSnapshot assembles the reconciliation inputs, either from a local
// fixture or from the three live APIs in parallel.
func loadSnapshot(cmd *cobra.Command, sl starlink.Client) (*reconcile.Snapshot, error) {
	if reconcileOffline {
		return fixture.Load(reconcileFixture)
	}

	nx := nox.NewClient(cfg.Nox.BaseURL, cfg.Nox.Token)
	vn := venus.NewClient(cfg.Venus.BaseURL, cfg.Venus.Token)

	var (
		devices map[string]*model.Device
		addrs   map[string]geom.Coord
		routers []directory.Router
		isp     map[string]bool
	)

	g, gctx := errgroup.WithContext(cmd.Context())
	g.Go(func() error {
		var err error
		devices, err = source.PullDevices(gctx, sl)
		return err
	})
	g.Go(func() error {
		var err error
		addrs, err = source.PullAddressCoords(gctx, sl)
		return err
	})
	g.Go(func() error {
		var err error
		routers, err = source.PullDirectory(gctx, nx)
		return err
	})
	g.Go(func() error {
		var err error
		isp, err = source.PullISPRouters(gctx, vn)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &reconcile.Snapshot{
		Devices:      devices,
		DeviceCoords: source.DeviceCoords(devices, addrs),
		Routers:      routers,
		ISPRouters:   isp,
	}, nil
}

// pushNicknames applies the push plan against the Starlink API, marking each
// device that was updated.
func pushNicknames(cmd *cobra.Command, sl starlink.Client, res *reconcile.Result) error {
	bySln := make(map[string]*model.Device, len(res.Devices))
	for _, d := range res.Devices {
		bySln[d.Sln] = d
	}

	for _, item := range reconcile.PushPlan(res.Devices) {
		if err := sl.UpdateNickname(cmd.Context(), item.Sln, item.Nickname); err != nil {
			return eris.Wrapf(err, "push nickname for %s", item.Sln)
		}
		bySln[item.Sln].Updated = true
		zap.L().Info("pushed nickname",
			zap.String("sln", item.Sln),
			zap.String("nickname", item.Nickname),
		)
	}
	return nil
}

func writeReport(devices []*model.Device, coords map[string]geom.Coord) error {
	output := reconcileOutput
	if output == "" {
		output = cfg.Report.Output
	}
	format := reconcileFormat
	if format == "" {
		format = cfg.Report.Format
	}

	switch report.Format(format) {
	case report.FormatCSV:
		return report.WriteCSV(devices, output)
	case report.FormatXLSX:
		return report.WriteXLSX(devices, output)
	case report.FormatShapefile:
		return report.WriteShapefile(devices, coords, output)
	default:
		return eris.Errorf("unknown report format %q", format)
	}
}

func init() {
	reconcileCmd.Flags().BoolVar(&reconcileOffline, "offline", false, "reconcile a local fixture instead of the live APIs")
	reconcileCmd.Flags().StringVar(&reconcileFixture, "fixture", "", "fixture file for --offline")
	reconcileCmd.Flags().StringVar(&reconcileHidden, "hidden", "", "CSV file of nickname overrides for devices hidden from the API (default from config)")
	reconcileCmd.Flags().BoolVar(&reconcilePush, "push", false, "push recommended nicknames to the Starlink API")
	reconcileCmd.Flags().StringVar(&reconcileOutput, "output", "", "report output path (default from config)")
	reconcileCmd.Flags().StringVar(&reconcileFormat, "format", "", "report format: csv, xlsx, or shp (default from config)")
	reconcileCmd.Flags().BoolVar(&reconcileNoStore, "no-store", false, "skip saving the run to history")
	reconcileCmd.MarkFlagsRequiredTogether("offline", "fixture")
	rootCmd.AddCommand(reconcileCmd)
}
