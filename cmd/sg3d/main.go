package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"runtime/pprof"
	"strconv"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"

	"github.com/scholargraph/scholargraph3d/pkg/config"
	"github.com/scholargraph/scholargraph3d/pkg/debug"
	"github.com/scholargraph/scholargraph3d/pkg/export"
	"github.com/scholargraph/scholargraph3d/pkg/layout"
	"github.com/scholargraph/scholargraph3d/pkg/loader"
	"github.com/scholargraph/scholargraph3d/pkg/model"
	"github.com/scholargraph/scholargraph3d/pkg/scene"
	"github.com/scholargraph/scholargraph3d/pkg/scene/overlay"
	"github.com/scholargraph/scholargraph3d/pkg/ui"
	"github.com/scholargraph/scholargraph3d/pkg/version"
	"github.com/scholargraph/scholargraph3d/pkg/watcher"
)

// settleSteps is how many physics iterations a headless snapshot runs before
// rendering, enough for the force layout to reach a readable shape.
const settleSteps = 300

func main() {
	cpuProfile := flag.String("cpu-profile", "", "Write CPU profile to file")
	help := flag.Bool("help", false, "Show help")
	versionFlag := flag.Bool("version", false, "Show version")
	snapshotPath := flag.String("snapshot", "", "Render a static snapshot to this path and exit (format from extension)")
	snapshotFormat := flag.String("format", "", "Snapshot format: svg or png (default: from extension)")
	snapshotTitle := flag.String("title", "", "Snapshot title")
	noWatch := flag.Bool("no-watch", false, "Disable live reload of the graph file")
	seed := flag.Int64("seed", 1, "Layout RNG seed")
	flag.Parse()

	if *cpuProfile != "" {
		f, err := os.Create(*cpuProfile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Could not create CPU profile: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		if err := pprof.StartCPUProfile(f); err != nil {
			fmt.Fprintf(os.Stderr, "Could not start CPU profile: %v\n", err)
			os.Exit(1)
		}
		defer pprof.StopCPUProfile()
	}

	if *help {
		fmt.Println("Usage: sg3d [options] [graph.json]")
		fmt.Println("\nA 3D knowledge-graph viewer for academic paper networks.")
		flag.PrintDefaults()
		os.Exit(0)
	}
	if *versionFlag {
		fmt.Printf("sg3d %s\n", version.Version)
		os.Exit(0)
	}

	path, err := loader.ResolvePath(flag.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error locating graph file: %v\n", err)
		fmt.Fprintln(os.Stderr, "Pass a graph.json path or set SG3D_GRAPH.")
		os.Exit(1)
	}

	res, err := loader.Load(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading graph: %v\n", err)
		os.Exit(1)
	}
	for _, w := range res.Warnings {
		fmt.Fprintf(os.Stderr, "warning: %s\n", w)
	}
	if len(res.Graph.Papers) == 0 {
		fmt.Println("No papers in graph file.")
		os.Exit(0)
	}

	cfg, cfgErr := config.Load()
	if cfgErr != nil {
		debug.Log("config load: %v", cfgErr)
		cfg = config.Default()
	}

	force := layout.NewForce(*seed)
	force.SetGraph(&res.Graph)

	eng := scene.New(force, scene.Options{
		OverlayInterval:  cfg.Engine.OverlayInterval,
		ExpandDuration:   cfg.Engine.ExpandDuration,
		CameraDuration:   cfg.Engine.CameraDuration,
		DoubleClickDelay: cfg.Engine.DoubleClickDelay,
		HoverDebounce:    cfg.Engine.HoverDebounce,
		Seed:             *seed,
	})
	eng.SetView(cfg.View)
	eng.SetGraph(&res.Graph)

	if *snapshotPath != "" {
		if err := renderSnapshot(eng, force, *snapshotPath, *snapshotFormat, *snapshotTitle); err != nil {
			fmt.Fprintf(os.Stderr, "Snapshot failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Snapshot written to %s\n", *snapshotPath)
		return
	}

	if !term.IsTerminal(int(os.Stdout.Fd())) {
		fmt.Fprintln(os.Stderr, "Not a terminal; use --snapshot to render headless output.")
		os.Exit(1)
	}

	var w *watcher.Watcher
	if !*noWatch {
		w, err = watcher.New(path)
		if err != nil {
			debug.Log("watcher setup: %v", err)
		} else if err := w.Start(); err != nil {
			debug.Log("watcher start: %v", err)
			w = nil
		} else {
			defer w.Stop()
		}
	}

	eng.Mount()
	defer eng.Unmount()

	m := ui.NewModel(cfg, eng, force, w, path)
	defer m.Teardown()

	if err := runTUIProgram(m); err != nil {
		fmt.Printf("Error running viewer: %v\n", err)
		os.Exit(1)
	}
}

// renderSnapshot settles the layout headlessly and writes one frame.
func renderSnapshot(eng *scene.Engine, force *layout.Force, path, format, title string) error {
	for i := 0; i < settleSteps; i++ {
		force.Step(1.0 / 30)
	}

	view := eng.View()
	positions := force.Snapshot()

	var hulls []overlay.ClusterHull
	if view.Theme == model.ThemeHull {
		hulls = overlay.Hulls(eng.Graph(), view, positions)
	}

	var bridges []*overlay.GapBridge
	if view.GapOverlay {
		gaps := overlay.NewGapOverlay()
		gaps.Rebuild(eng.Graph(), view, positions)
		bridges = gaps.Bridges
	}

	var grid *overlay.TimelineGrid
	if view.TimelineMode {
		tl := overlay.NewTimeline(force)
		grid = tl.Enable(eng.Graph())
		defer tl.Disable()
	}

	return export.SaveSnapshot(export.SnapshotOptions{
		Path:      path,
		Format:    format,
		Title:     title,
		Graph:     eng.RenderGraph(),
		Positions: positions,
		Camera:    eng.Camera(),
		Hulls:     hulls,
		Bridges:   bridges,
		Timeline:  grid,
	})
}

func runTUIProgram(m ui.Model) error {
	p := tea.NewProgram(
		m,
		tea.WithAltScreen(),
		tea.WithoutSignalHandler(),
	)

	runDone := make(chan struct{})
	defer close(runDone)

	// Graceful shutdown on SIGINT/SIGTERM.
	sigCh := make(chan os.Signal, 2)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case <-runDone:
			return
		case <-sigCh:
		}

		p.Quit()

		select {
		case <-runDone:
			return
		case <-sigCh:
		case <-time.After(5 * time.Second):
		}

		p.Kill()
	}()

	// Optional auto-quit for automated tests: set SG3D_TUI_AUTOCLOSE_MS.
	if v := os.Getenv("SG3D_TUI_AUTOCLOSE_MS"); v != "" {
		if ms, err := strconv.Atoi(v); err == nil && ms > 0 {
			go func() {
				timer := time.NewTimer(time.Duration(ms) * time.Millisecond)
				defer timer.Stop()

				select {
				case <-runDone:
					return
				case <-timer.C:
				}

				p.Quit()

				select {
				case <-runDone:
					return
				case <-time.After(2 * time.Second):
				}

				p.Kill()
			}()
		}
	}

	_, err := p.Run()
	if err != nil && (errors.Is(err, tea.ErrProgramKilled) || errors.Is(err, tea.ErrInterrupted)) {
		return nil
	}
	return err
}
