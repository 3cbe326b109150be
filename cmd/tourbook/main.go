// Command tourbook is a CLI client for the tour-booking API: browse tours,
// manage a local cart, check out through the payment gateway and inspect
// bookings, vouchers and the wallet.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/vmtran/tourbook/internal/cart"
	"github.com/vmtran/tourbook/internal/config"
	"github.com/vmtran/tourbook/internal/gateway"
	"github.com/vmtran/tourbook/internal/model"
	"github.com/vmtran/tourbook/internal/payment"
	"github.com/vmtran/tourbook/internal/secstore"
	"github.com/vmtran/tourbook/internal/service"
	"github.com/vmtran/tourbook/internal/session"
)

var (
	version   = "dev"
	buildDate = "unknown"
)

// app bundles the wired client stack for command handlers.
type app struct {
	cfg      *config.Config
	sessions *session.Manager
	ledger   *cart.Ledger

	auth     service.AuthService
	users    service.UserService
	tours    service.TourService
	orders   service.OrderService
	wallet   service.WalletService
	vouchers service.VoucherService
	settings service.SettingService
}

func usage() {
	fmt.Fprintf(os.Stderr, `tourbook CLI
Usage:
  tourbook [-v] <cmd> [args]

Commands:
  version
  register  -u <user> -p <pass> -name <n> -email <e> [-phone <p>] [-address <a>]
  login     -u <user> -p <pass>                    (saves tokens)
  logout
  whoami
  tours     [-search <s>] [-top <n>] [-skip <n>]
  tour      -id <uuid>
  departures -id <tour-uuid>                       (bookable departures)
  schedule  -id <tour-uuid>                        (per-day ticket availability)
  cart      show | add | rm | qty | clear
  checkout  -schedule <id> -name <n> -phone <p> -email <e> [-voucher <code>]
  order     show -id <uuid> | cancel -id <uuid>
  wallet    show | otp | withdraw -amount <n> -otp <code> | deposit -amount <n>
  vouchers
  settings
  classify  -url <redirect-url>                    (payment outcome hint)
`)
	os.Exit(2)
}

func fail(err error) {
	fmt.Fprintln(os.Stderr, "error:", err)
	os.Exit(1)
}

func printJSON(v any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}

// main wires the client stack and dispatches subcommands.
func main() {
	verbose := flag.Bool("v", false, "verbose logging")
	flag.Usage = usage
	flag.Parse()
	if flag.NArg() < 1 {
		usage()
	}
	cmd := flag.Arg(0)

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		fail(err)
	}

	logger := zap.NewNop()
	if *verbose {
		logger, _ = zap.NewDevelopment()
	}
	defer func() { _ = logger.Sync() }()

	pass, err := secstore.LoadOrCreatePassphrase(cfg.ConfigDir)
	if err != nil {
		fail(err)
	}
	store, err := secstore.Open(cfg.ConfigDir, pass)
	if err != nil {
		fail(err)
	}

	sessions := session.NewManager(store, nil, logger)
	gw := gateway.New(sessions, gateway.Config{
		BaseURL:    cfg.APIBaseURL,
		HTTPClient: &http.Client{Timeout: cfg.HTTPTimeout},
		Logger:     logger,
	})
	sessions.SetRefreshFunc(gw.TokenRefresher())
	sessions.Restore(ctx)

	a := &app{
		cfg:      cfg,
		sessions: sessions,
		ledger:   cart.NewLedger(),
		auth:     service.NewAuthService(gw, sessions, logger),
		users:    service.NewUserService(gw),
		tours:    service.NewTourService(gw),
		orders:   service.NewOrderService(gw, logger),
		wallet:   service.NewWalletService(gw),
		vouchers: service.NewVoucherService(gw),
		settings: service.NewSettingService(gw),
	}
	if err := loadCart(cfg.ConfigDir, a.ledger); err != nil {
		fail(err)
	}

	switch cmd {

	case "version":
		fmt.Printf("tourbook %s (%s)\n", version, buildDate)

	case "register":
		fs := flag.NewFlagSet("register", flag.ExitOnError)
		u := fs.String("u", "", "username")
		p := fs.String("p", "", "password")
		name := fs.String("name", "", "full name")
		email := fs.String("email", "", "email")
		phone := fs.String("phone", "", "phone number")
		address := fs.String("address", "", "address")
		_ = fs.Parse(flag.Args()[1:])
		if *u == "" || *p == "" || *name == "" || *email == "" {
			fail(fmt.Errorf("need -u, -p, -name and -email"))
		}
		err := a.auth.Register(ctx, service.RegisterRequest{
			UserName: *u, Password: *p, Name: *name,
			Email: *email, PhoneNumber: *phone, Address: *address,
		})
		if err != nil {
			fail(err)
		}
		fmt.Println("registered; check your email for confirmation")

	case "login":
		fs := flag.NewFlagSet("login", flag.ExitOnError)
		u := fs.String("u", "", "username")
		p := fs.String("p", "", "password")
		_ = fs.Parse(flag.Args()[1:])
		if *u == "" || *p == "" {
			fail(fmt.Errorf("need -u and -p"))
		}
		env, err := a.auth.Login(ctx, *u, *p)
		if err != nil {
			fail(err)
		}
		fmt.Printf("logged in as %s (role %s)\n", *u, env.Role)

	case "logout":
		if err := a.auth.Logout(ctx); err != nil {
			fmt.Fprintln(os.Stderr, "server-side logout failed (local session cleared):", err)
		}
		fmt.Println("logged out")

	case "whoami":
		if !a.sessions.IsAuthenticated() && !a.sessions.RefreshIfNeeded(ctx) {
			fail(fmt.Errorf("not logged in"))
		}
		profile, err := a.users.Profile(ctx)
		if err != nil {
			fail(err)
		}
		printJSON(profile)

	case "tours":
		fs := flag.NewFlagSet("tours", flag.ExitOnError)
		search := fs.String("search", "", "search in titles")
		top := fs.Int("top", 20, "page size")
		skip := fs.Int("skip", 0, "offset")
		_ = fs.Parse(flag.Args()[1:])
		list, _, err := a.tours.List(ctx, service.TourListQuery{
			Search: *search, Top: *top, Skip: *skip,
		})
		if err != nil {
			fail(err)
		}
		printJSON(list)

	case "tour":
		fs := flag.NewFlagSet("tour", flag.ExitOnError)
		id := fs.String("id", "", "tour id")
		_ = fs.Parse(flag.Args()[1:])
		if *id == "" {
			fail(fmt.Errorf("need -id"))
		}
		det, err := a.tours.Detail(ctx, *id)
		if err != nil {
			fail(err)
		}
		printJSON(det)

	case "departures":
		fs := flag.NewFlagSet("departures", flag.ExitOnError)
		id := fs.String("id", "", "tour id")
		_ = fs.Parse(flag.Args()[1:])
		if *id == "" {
			fail(fmt.Errorf("need -id"))
		}
		schedules, err := a.tours.Schedules(ctx, *id)
		if err != nil {
			fail(err)
		}
		printJSON(schedules)

	case "schedule":
		fs := flag.NewFlagSet("schedule", flag.ExitOnError)
		id := fs.String("id", "", "tour id")
		_ = fs.Parse(flag.Args()[1:])
		if *id == "" {
			fail(fmt.Errorf("need -id"))
		}
		days, err := a.tours.ScheduleTickets(ctx, *id)
		if err != nil {
			fail(err)
		}
		printJSON(days)

	case "cart":
		a.runCart(flag.Args()[1:])

	case "checkout":
		fs := flag.NewFlagSet("checkout", flag.ExitOnError)
		scheduleID := fs.String("schedule", "", "cart schedule id")
		name := fs.String("name", "", "purchaser name")
		phone := fs.String("phone", "", "purchaser phone")
		email := fs.String("email", "", "purchaser email")
		voucher := fs.String("voucher", "", "voucher code")
		_ = fs.Parse(flag.Args()[1:])
		if *scheduleID == "" || *name == "" || *phone == "" || *email == "" {
			fail(fmt.Errorf("need -schedule, -name, -phone and -email"))
		}
		item, ok := a.ledger.Item(*scheduleID)
		if !ok {
			fail(fmt.Errorf("schedule %s not in cart", *scheduleID))
		}
		urls := model.ResponseURL{
			ReturnURL: a.cfg.AppScheme + "://payment/success",
			CancelURL: a.cfg.AppScheme + "://payment/cancel",
		}
		res, err := a.orders.Checkout(ctx, item, service.Contact{
			Name: *name, PhoneNumber: *phone, Email: *email,
		}, *voucher, urls)
		if err != nil {
			fail(err)
		}
		// The schedule leaves the cart once its order exists; payment is
		// confirmed later against the order detail.
		a.ledger.RemoveItem(*scheduleID)
		if err := saveCart(a.cfg.ConfigDir, a.ledger); err != nil {
			fail(err)
		}
		printJSON(res)

	case "order":
		a.runOrder(ctx, flag.Args()[1:])

	case "wallet":
		a.runWallet(ctx, flag.Args()[1:])

	case "vouchers":
		list, err := a.vouchers.Own(ctx)
		if err != nil {
			fail(err)
		}
		printJSON(list)

	case "settings":
		list, err := a.settings.Settings(ctx)
		if err != nil {
			fail(err)
		}
		printJSON(list)

	case "classify":
		fs := flag.NewFlagSet("classify", flag.ExitOnError)
		raw := fs.String("url", "", "redirect url")
		_ = fs.Parse(flag.Args()[1:])
		if *raw == "" {
			fail(fmt.Errorf("need -url"))
		}
		out := payment.ClassifyURL(*raw)
		fmt.Printf("status=%s orderId=%s (hint only; confirm via order show)\n",
			out.Status, out.OrderID)

	default:
		usage()
	}
}

// runCart handles the cart subcommands against the persisted local ledger.
func (a *app) runCart(args []string) {
	if len(args) < 1 {
		usage()
	}
	switch args[0] {

	case "show":
		printJSON(struct {
			Items []model.CartItem `json:"items"`
			Total int64            `json:"total"`
		}{a.ledger.Items(), a.ledger.TotalPrice()})
		return

	case "add":
		fs := flag.NewFlagSet("cart add", flag.ExitOnError)
		tourID := fs.String("tour", "", "tour id")
		title := fs.String("title", "", "tour title")
		scheduleID := fs.String("schedule", "", "schedule id")
		day := fs.String("day", "", "tour day (YYYY-MM-DD)")
		var tickets ticketFlags
		fs.Var(&tickets, "ticket", "ticket line id:kind:qty:price (repeatable)")
		_ = fs.Parse(args[1:])
		if *scheduleID == "" || len(tickets) == 0 {
			fail(fmt.Errorf("need -schedule and at least one -ticket"))
		}
		a.ledger.AddItem(model.CartItem{
			TourID:     *tourID,
			TourTitle:  *title,
			ScheduleID: *scheduleID,
			Day:        *day,
			Tickets:    tickets,
		})

	case "rm":
		fs := flag.NewFlagSet("cart rm", flag.ExitOnError)
		scheduleID := fs.String("schedule", "", "schedule id")
		_ = fs.Parse(args[1:])
		if *scheduleID == "" {
			fail(fmt.Errorf("need -schedule"))
		}
		a.ledger.RemoveItem(*scheduleID)

	case "qty":
		fs := flag.NewFlagSet("cart qty", flag.ExitOnError)
		scheduleID := fs.String("schedule", "", "schedule id")
		ticketID := fs.String("ticket", "", "ticket type id")
		n := fs.Int("n", 0, "new quantity")
		_ = fs.Parse(args[1:])
		if *scheduleID == "" || *ticketID == "" {
			fail(fmt.Errorf("need -schedule and -ticket"))
		}
		a.ledger.UpdateQuantity(*scheduleID, *ticketID, *n)

	case "clear":
		a.ledger.Clear()

	default:
		usage()
	}

	if err := saveCart(a.cfg.ConfigDir, a.ledger); err != nil {
		fail(err)
	}
	fmt.Printf("cart: %d item(s), total %d\n", a.ledger.ItemCount(), a.ledger.TotalPrice())
}

func (a *app) runOrder(ctx context.Context, args []string) {
	if len(args) < 1 {
		usage()
	}
	fs := flag.NewFlagSet("order", flag.ExitOnError)
	id := fs.String("id", "", "order id")
	_ = fs.Parse(args[1:])
	if *id == "" {
		fail(fmt.Errorf("need -id"))
	}
	switch args[0] {
	case "show":
		det, err := a.orders.Detail(ctx, *id)
		if err != nil {
			fail(err)
		}
		printJSON(det)
	case "cancel":
		if err := a.orders.Cancel(ctx, *id); err != nil {
			fail(err)
		}
		fmt.Println("order cancelled")
	default:
		usage()
	}
}

func (a *app) runWallet(ctx context.Context, args []string) {
	sub := "show"
	if len(args) > 0 {
		sub = args[0]
	}
	switch sub {
	case "show":
		w, err := a.wallet.Get(ctx)
		if err != nil {
			fail(err)
		}
		printJSON(w)
	case "otp":
		if err := a.wallet.RequestOTP(ctx); err != nil {
			fail(err)
		}
		fmt.Println("otp sent")
	case "withdraw":
		fs := flag.NewFlagSet("wallet withdraw", flag.ExitOnError)
		amount := fs.Int64("amount", 0, "amount (VND)")
		otp := fs.String("otp", "", "otp code")
		_ = fs.Parse(args[1:])
		if err := a.wallet.WithdrawWithOTP(ctx, *amount, *otp); err != nil {
			fail(err)
		}
		fmt.Println("withdrawal submitted")
	case "deposit":
		fs := flag.NewFlagSet("wallet deposit", flag.ExitOnError)
		amount := fs.Int64("amount", 0, "amount (VND)")
		_ = fs.Parse(args[1:])
		link, err := a.wallet.Deposit(ctx, *amount)
		if err != nil {
			fail(err)
		}
		fmt.Println("complete the deposit at:", link)
	default:
		usage()
	}
}

// ticketFlags collects repeated -ticket id:kind:qty:price values.
type ticketFlags []model.TicketLine

func (t *ticketFlags) String() string { return fmt.Sprintf("%d ticket(s)", len(*t)) }

func (t *ticketFlags) Set(v string) error {
	parts := strings.Split(v, ":")
	if len(parts) != 4 {
		return fmt.Errorf("want id:kind:qty:price, got %q", v)
	}
	kind, err := strconv.Atoi(parts[1])
	if err != nil {
		return fmt.Errorf("bad kind in %q: %w", v, err)
	}
	qty, err := strconv.Atoi(parts[2])
	if err != nil {
		return fmt.Errorf("bad quantity in %q: %w", v, err)
	}
	price, err := strconv.ParseInt(parts[3], 10, 64)
	if err != nil {
		return fmt.Errorf("bad price in %q: %w", v, err)
	}
	*t = append(*t, model.TicketLine{
		TicketTypeID: parts[0],
		Kind:         model.TicketKind(kind),
		Quantity:     qty,
		UnitPrice:    price,
	})
	return nil
}
