package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"robosim/internal/catalog"
	"robosim/internal/config"
	"robosim/internal/interpreter"
	"robosim/internal/planner"
	"robosim/internal/runner"
	"robosim/internal/server"
	"robosim/internal/sim"
	"robosim/internal/world"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := run(ctx, os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, out io.Writer) error {
	if len(args) == 0 {
		return usageError("missing command")
	}

	switch args[0] {
	case "run":
		return runSimulation(ctx, args[1:], out)
	case "plan":
		return runPlan(args[1:], out)
	case "serve":
		return runServe(ctx, args[1:])
	case "catalog":
		return runCatalog(ctx, args[1:], out)
	default:
		return usageError(fmt.Sprintf("unknown command: %s", args[0]))
	}
}

func runSimulation(ctx context.Context, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("run", flag.ContinueOnError)
	gridPath := fs.String("grid", "", "grid file")
	robotPath := fs.String("robot", "", "robot definition (json)")
	scriptPath := fs.String("script", "", "command script")
	interval := fs.Duration("interval", -1, "tick interval; negative uses the robot file")
	haltOnError := fs.Bool("halt-on-error", false, "stop after a step that logs an error")
	storeKind := fs.String("catalog", "memory", "catalog backend: memory|sqlite")
	dbPath := fs.String("db-path", "robosim.db", "sqlite catalog path")
	verbose := fs.Bool("v", false, "debug logging")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *gridPath == "" || *robotPath == "" || *scriptPath == "" {
		return errors.New("run: -grid, -robot and -script are required")
	}

	grid, err := world.LoadFile(*gridPath)
	if err != nil {
		return err
	}
	robot, err := config.Load(*robotPath)
	if err != nil {
		return err
	}
	script, err := os.ReadFile(*scriptPath)
	if err != nil {
		return err
	}
	cmds, err := interpreter.Compile(string(script))
	if err != nil {
		return fmt.Errorf("%s: %w", *scriptPath, err)
	}

	store, err := catalog.NewStore(ctx, *storeKind, *dbPath)
	if err != nil {
		return err
	}
	defer func() {
		_ = catalog.CloseIfSupported(store)
	}()

	cfg, st, err := robot.Resolve(ctx, store)
	if err != nil {
		return fmt.Errorf("%s: %w", *robotPath, err)
	}
	engine, err := sim.New(cfg, grid, st, robot.Rand())
	if err != nil {
		return err
	}

	tick := *interval
	if tick < 0 {
		if tick, err = robot.Interval(); err != nil {
			return err
		}
	}

	sum, err := runner.Run(ctx, engine, cmds, runner.Options{
		Interval:    tick,
		HaltOnError: *haltOnError,
		Logger:      newLogger(*verbose),
		OnStep: func(r sim.StepResult) error {
			printStep(out, r)
			return nil
		},
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "run %s %s after %d ticks: position (%d,%d) heading %d battery %.1f moves %d collisions %d\n",
		sum.RunID, sum.Reason, sum.Ticks, sum.Last.X, sum.Last.Y, int(sum.Last.Direction),
		sum.Last.Battery, sum.Moves, sum.Collisions)
	return nil
}

func printStep(out io.Writer, r sim.StepResult) {
	fmt.Fprintf(out, "%4d %-10s (%d,%d) %3d bat=%5.1f core=%5.1f dist=%3.0f",
		r.Tick, r.Command, r.X, r.Y, int(r.Direction), r.Battery, r.Temperature, r.Sensors.Distance)
	for _, l := range r.Logs {
		fmt.Fprintf(out, " [%s]", l)
	}
	fmt.Fprintln(out)
}

func runPlan(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("plan", flag.ContinueOnError)
	gridPath := fs.String("grid", "", "grid file")
	from := fs.String("from", "0,0,0", "start pose x,y,direction")
	to := fs.String("to", "", "goal cell x,y")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *gridPath == "" || *to == "" {
		return errors.New("plan: -grid and -to are required")
	}

	grid, err := world.LoadFile(*gridPath)
	if err != nil {
		return err
	}
	start, err := parseInts(*from, 3)
	if err != nil {
		return fmt.Errorf("-from: %w", err)
	}
	goal, err := parseInts(*to, 2)
	if err != nil {
		return fmt.Errorf("-to: %w", err)
	}
	pose := planner.Pose{X: start[0], Y: start[1], Direction: sim.Direction(start[2])}
	if !pose.Direction.Valid() {
		return fmt.Errorf("-from: %w", sim.ErrInvalidDirection)
	}

	cmds, err := planner.Plan(grid, pose, goal[0], goal[1])
	if err != nil {
		return err
	}
	for _, c := range cmds {
		fmt.Fprintln(out, c)
	}
	return nil
}

func runServe(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	addr := fs.String("addr", ":8080", "listen address")
	origins := fs.String("allow-origins", "", "comma-separated host:port list of extra browser origins")
	interval := fs.Duration("interval", config.DefaultTickInterval, "default tick interval")
	storeKind := fs.String("catalog", "memory", "catalog backend: memory|sqlite")
	dbPath := fs.String("db-path", "robosim.db", "sqlite catalog path")
	verbose := fs.Bool("v", false, "debug logging")
	if err := fs.Parse(args); err != nil {
		return err
	}

	store, err := catalog.NewStore(ctx, *storeKind, *dbPath)
	if err != nil {
		return err
	}
	defer func() {
		_ = catalog.CloseIfSupported(store)
	}()

	logger := newLogger(*verbose)
	srv := &http.Server{
		Addr:              *addr,
		Handler:           server.New(store, logger, *interval).AllowOrigins(strings.Split(*origins, ",")...).Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errc := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", *addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func runCatalog(ctx context.Context, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("catalog", flag.ContinueOnError)
	storeKind := fs.String("catalog", "memory", "catalog backend: memory|sqlite")
	dbPath := fs.String("db-path", "robosim.db", "sqlite catalog path")
	seed := fs.Bool("seed", false, "restore the stock parts before listing")
	if err := fs.Parse(args); err != nil {
		return err
	}

	store, err := catalog.NewStore(ctx, *storeKind, *dbPath)
	if err != nil {
		return err
	}
	defer func() {
		_ = catalog.CloseIfSupported(store)
	}()

	if *seed {
		if err := catalog.Seed(ctx, store, catalog.Defaults()); err != nil {
			return err
		}
	}
	list, err := store.List(ctx)
	if err != nil {
		return err
	}
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTYPE\tNAME\tDRAW\tCAPABILITIES")
	for _, d := range list {
		fmt.Fprintf(w, "%s\t%s\t%s\t%.2f\t%s\n", d.ID, d.Type, d.Name, d.PowerDraw, d.Caps())
	}
	return w.Flush()
}

func newLogger(verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

func parseInts(s string, n int) ([]int, error) {
	parts := strings.Split(s, ",")
	if len(parts) != n {
		return nil, fmt.Errorf("want %d comma-separated integers, got %q", n, s)
	}
	out := make([]int, n)
	for i, p := range parts {
		v, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func usageError(msg string) error {
	return fmt.Errorf("%s\nusage: robosim <run|plan|serve|catalog> [flags]", msg)
}
