// Command console is a terminal front end for the rental backend: log in,
// browse the reservation list with filters and paging, and (as a manager)
// drive reservation status transitions.
package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/fleetrent/fleetrent-client/internal/config"
	"github.com/fleetrent/fleetrent-client/internal/events"
	"github.com/fleetrent/fleetrent-client/internal/listing"
	"github.com/fleetrent/fleetrent-client/internal/pkg/logger"
	"github.com/fleetrent/fleetrent-client/internal/pkg/rentalapi"
	"github.com/fleetrent/fleetrent-client/internal/rental"
	"github.com/fleetrent/fleetrent-client/internal/session"
)

func main() {
	cfg := config.Load()
	logger.Init(logger.Config{Level: cfg.LogLevel, Environment: cfg.Env})

	client := rentalapi.NewClient(cfg.APIBaseURL,
		time.Duration(cfg.APITimeoutSeconds)*time.Second, cfg.UserAgent)

	app := &app{
		cfg:     cfg,
		client:  client,
		table:   rental.DefaultTransitions(),
		updates: make(chan struct{}, 1),
		errs:    make(chan error, 4),
	}
	app.run()
}

// transition commands mapped to their target statuses. Which of these a
// given reservation actually offers is decided by the transition table at
// render time.
var commandTargets = map[string]rental.Status{
	"confirm":  rental.StatusConfirmed,
	"cancel":   rental.StatusCancelled,
	"activate": rental.StatusActive,
	"noshow":   rental.StatusNoShow,
	"complete": rental.StatusCompleted,
}

type app struct {
	cfg    *config.Config
	client *rentalapi.Client
	table  rental.TransitionTable

	sess    session.Session
	svc     *rental.Service
	list    *listing.Listing
	updates chan struct{}
	errs    chan error

	feedCancel context.CancelFunc
}

// run is the single UI event loop: user commands and fetch completions
// both arrive as events; no other goroutine touches the screen.
func (a *app) run() {
	lines := make(chan string)
	go func() {
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
		close(lines)
	}()

	fmt.Println("fleetrent console (type 'help' for commands)")
	fmt.Print("> ")

	for {
		select {
		case line, ok := <-lines:
			if !ok {
				a.shutdown()
				return
			}
			if !a.dispatch(strings.Fields(strings.TrimSpace(line))) {
				a.shutdown()
				return
			}
			fmt.Print("> ")
		case <-a.updates:
			a.render()
			fmt.Print("> ")
		case err := <-a.errs:
			fmt.Println("\ntransition failed:", err)
			fmt.Print("> ")
		}
	}
}

// dispatch handles one command line; returns false to quit.
func (a *app) dispatch(args []string) bool {
	if len(args) == 0 {
		return true
	}

	cmd := strings.ToLower(args[0])
	if target, ok := commandTargets[cmd]; ok {
		a.transition(args[1:], target)
		return true
	}

	switch cmd {
	case "help":
		printHelp()
	case "quit", "exit":
		return false
	case "login":
		a.login(args[1:])
	case "list":
		a.refresh()
	case "filter":
		a.filter(args[1:])
	case "reset":
		if a.list != nil {
			a.list.ResetFilter()
			a.refresh()
		}
	case "next":
		if a.list != nil && a.list.NextPage() {
			a.refresh()
		} else {
			fmt.Println("already on the last page")
		}
	case "prev":
		if a.list != nil && a.list.PrevPage() {
			a.refresh()
		} else {
			fmt.Println("already on the first page")
		}
	case "branches":
		a.branches()
	case "cars":
		a.cars()
	default:
		fmt.Printf("unknown command %q, type 'help'\n", cmd)
	}
	return true
}

func (a *app) login(args []string) {
	if len(args) != 2 {
		fmt.Println("usage: login <email> <password>")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	sess, err := a.client.Login(ctx, args[0], args[1])
	if err != nil {
		fmt.Println("login failed:", err)
		return
	}
	if sess.Role == "" {
		// Older backend builds only return the token.
		if derived, err := session.FromToken(sess.Token); err == nil {
			sess = derived
		}
	}

	a.sess = sess
	a.svc = rental.NewService(a.client, a.table)
	a.list = listing.New(a.svc, a.sess, a.table, a.cfg.PageSize, a.notify)

	// Successful transitions (and feed notices) re-fetch with the filter
	// and page that are already active; nothing is mutated locally.
	a.svc.OnDataChanged(func() {
		go a.list.Refresh(context.Background())
	})

	if a.feedCancel != nil {
		a.feedCancel()
		a.feedCancel = nil
	}
	if a.cfg.EventsEnabled {
		feedCtx, cancel := context.WithCancel(context.Background())
		a.feedCancel = cancel
		sub := events.NewSubscriber(a.cfg.APIBaseURL, a.sess.Token, a.svc.NotifyDataChanged)
		go sub.Run(feedCtx)
	}

	fmt.Printf("logged in as %s (%s)\n", a.sess.UserID, a.sess.Role)
	a.refresh()
}

func (a *app) refresh() {
	if a.list == nil {
		fmt.Println("log in first")
		return
	}
	go a.list.Refresh(context.Background())
}

func (a *app) filter(args []string) {
	if a.list == nil {
		fmt.Println("log in first")
		return
	}

	var values rental.FormValues
	for _, arg := range args {
		key, value, found := strings.Cut(arg, "=")
		if !found {
			fmt.Printf("bad filter argument %q, expected key=value\n", arg)
			return
		}
		switch key {
		case "from":
			values.From = value
		case "to":
			values.To = value
		case "status":
			values.Status = strings.ToUpper(value)
		default:
			fmt.Printf("unknown filter field %q (from, to, status)\n", key)
			return
		}
	}

	if errs := a.list.SubmitFilter(values); errs != nil {
		for field, msg := range errs {
			fmt.Printf("%s: %s\n", field, msg)
		}
		return
	}
	a.refresh()
}

func (a *app) transition(args []string, target rental.Status) {
	if a.list == nil {
		fmt.Println("log in first")
		return
	}
	if len(args) != 1 {
		fmt.Println("usage: <action> <reservation-id>")
		return
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		fmt.Println("bad reservation id:", args[0])
		return
	}

	// Offer only what the rendered row offers; the backend still has the
	// final say and may reject a raced transition.
	allowed := false
	for _, row := range a.list.Rows() {
		if row.Reservation.ID != id {
			continue
		}
		for _, action := range row.Actions {
			if action.Target == target {
				allowed = true
			}
		}
	}
	if !allowed {
		fmt.Printf("no %s action available for reservation %d\n", target, id)
		return
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if _, err := a.svc.Transition(ctx, a.sess, id, target); err != nil {
			// The event loop owns the screen; hand the failure over and
			// re-sync since the displayed page may be stale after a rejection.
			a.errs <- err
			a.list.Refresh(context.Background())
		}
	}()
}

func (a *app) branches() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	branches, err := a.client.ListBranches(ctx)
	if err != nil {
		fmt.Println("failed:", err)
		return
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tCITY\tADDRESS\tPHONE")
	for _, b := range branches {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", b.Name, b.City, b.Address, b.Phone)
	}
	w.Flush()
}

func (a *app) cars() {
	if !a.sess.Authenticated() {
		fmt.Println("log in first")
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	cars, err := a.client.ListCars(ctx, a.sess)
	if err != nil {
		fmt.Println("failed:", err)
		return
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "PLATE\tBRAND\tMODEL\tYEAR\tPRICE/DAY\tAVAILABLE")
	for _, c := range cars {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\t%t\n",
			c.LicensePlate, c.Brand, c.Model, c.Year, c.PricePerDay, c.Available)
	}
	w.Flush()
}

// notify wakes the event loop after a fetch result lands. Non-blocking:
// coalescing bursts into one redraw is fine.
func (a *app) notify() {
	select {
	case a.updates <- struct{}{}:
	default:
	}
}

func (a *app) render() {
	fmt.Println()
	if err := a.list.Err(); err != nil {
		fmt.Println("error:", err)
		return
	}

	if a.list.Empty() {
		fmt.Println("No reservations match the current filter.")
		return
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tCAR\tCLIENT\tFROM\tTO\tTOTAL\tSTATUS\tACTIONS")
	for _, row := range a.list.Rows() {
		r := row.Reservation
		labels := make([]string, len(row.Actions))
		for i, action := range row.Actions {
			labels[i] = action.Label
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			r.ID, r.CarPlate, r.ClientUsername,
			r.StartDate.Format(rental.DateFormat), r.EndDate.Format(rental.DateFormat),
			r.TotalAmount, r.Status, strings.Join(labels, ", "))
	}
	w.Flush()

	if page := a.list.Page(); page != nil {
		nav := ""
		if a.list.CanPrev() {
			nav += " [prev]"
		}
		if a.list.CanNext() {
			nav += " [next]"
		}
		fmt.Printf("page %d/%d, %d total%s\n",
			page.PageIndex+1, page.TotalPages, page.TotalElements, nav)
	}
}

func (a *app) shutdown() {
	if a.feedCancel != nil {
		a.feedCancel()
	}
	log.Debug().Msg("console exiting")
}

func printHelp() {
	fmt.Print(`commands:
  login <email> <password>       authenticate against the backend
  list                           fetch the reservation list
  filter from=Y-M-D to=Y-M-D status=S   narrow the list (resets to page 1)
  reset                          clear all filters
  next | prev                    page through results
  confirm|cancel|activate|noshow|complete <id>   change a reservation status
  branches | cars                browse the catalog
  quit
`)
}
