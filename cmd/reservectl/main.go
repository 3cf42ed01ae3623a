package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"reservation-service/client"
	"reservation-service/internal/entity"
	"reservation-service/internal/events"
)

const usage = `usage: reservectl [flags] <command> [args]

commands:
  register <name> <email> <password>
  login <email> <password>
  restaurants
  availability <restaurant-id> <YYYY-MM-DD>
  book <restaurant-id> <YYYY-MM-DD> <HH:MM> <people>
  edit <reservation-id> <YYYY-MM-DD> <HH:MM> <people>
  cancel <reservation-id>
  list
  export <file.xlsx>
  watch                      print reservation events from Kafka

flags:
`

var logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}).With().Timestamp().Logger()

func main() {
	_ = godotenv.Load()

	home, _ := os.UserHomeDir()
	baseURL := flag.String("url", envOr("RESERVATION_API_URL", "http://localhost:5001/api"), "API base URL")
	tokenFile := flag.String("token-file", filepath.Join(home, ".reservectl-token"), "where the login token is kept")
	timeout := flag.Duration("timeout", client.DefaultTimeout, "request timeout")
	brokers := flag.String("brokers", os.Getenv("KAFKA_BROKERS"), "Kafka brokers for watch, comma separated")
	topic := flag.String("topic", envOr("KAFKA_TOPIC", "reservation-topic"), "Kafka topic for watch")
	flag.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), usage)
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	token, _ := os.ReadFile(*tokenFile)
	c := client.New(*baseURL, client.WithTimeout(*timeout), client.WithToken(strings.TrimSpace(string(token))))
	cmd := &command{client: c, tokenFile: *tokenFile, brokers: *brokers, topic: *topic}

	if err := cmd.run(ctx, flag.Arg(0), flag.Args()[1:]); err != nil {
		var apiErr *client.APIError
		if errors.As(err, &apiErr) {
			logger.Error().Int("status", apiErr.Status).Msg(apiErr.Message)
		} else {
			logger.Error().Err(err).Msg(flag.Arg(0) + " failed")
		}
		os.Exit(1)
	}
}

type command struct {
	client    *client.Client
	tokenFile string
	brokers   string
	topic     string
}

func (cmd *command) run(ctx context.Context, name string, args []string) error {
	switch name {
	case "register":
		if len(args) != 3 {
			return errors.New("register needs <name> <email> <password>")
		}
		user, err := cmd.client.Register(ctx, args[0], args[1], args[2])
		if err != nil {
			return err
		}
		fmt.Printf("registered %s <%s> as user %d\n", user.Name, user.Email, user.ID)

	case "login":
		if len(args) != 2 {
			return errors.New("login needs <email> <password>")
		}
		result, err := cmd.client.Login(ctx, args[0], args[1])
		if err != nil {
			return err
		}
		if err := os.WriteFile(cmd.tokenFile, []byte(result.Token), 0o600); err != nil {
			return fmt.Errorf("failed to save token: %w", err)
		}
		fmt.Printf("logged in, token valid for %s\n", result.ExpiresIn)

	case "restaurants":
		restaurants, err := cmd.client.Restaurants(ctx)
		if err != nil {
			return err
		}
		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tNAME\tLOCATION\tSEATS/DAY")
		for _, r := range restaurants {
			fmt.Fprintf(w, "%d\t%s\t%s\t%d\n", r.ID, r.Name, r.Address, r.DailyLimit)
		}
		return w.Flush()

	case "availability":
		if len(args) != 2 {
			return errors.New("availability needs <restaurant-id> <YYYY-MM-DD>")
		}
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		a, err := cmd.client.Availability(ctx, id, args[1])
		if err != nil {
			return err
		}
		fmt.Printf("%d of %d seats booked, %d left\n", a.Reserved, a.Limit, a.Remaining())

	case "book":
		req, id, err := reservationArgs(args)
		if err != nil {
			return err
		}
		req.RestaurantID = id
		res, err := cmd.client.Book(ctx, req)
		if err != nil {
			return err
		}
		fmt.Printf("reservation %d: %s at %s for %d\n", res.ID, res.Date, res.Time, res.PeopleCount)

	case "edit":
		req, id, err := reservationArgs(args)
		if err != nil {
			return err
		}
		existing, err := cmd.findReservation(ctx, id)
		if err != nil {
			return err
		}
		res, err := cmd.client.Reschedule(ctx, existing, req)
		if err != nil {
			return err
		}
		fmt.Printf("reservation %d moved to %s at %s for %d\n", res.ID, res.Date, res.Time, res.PeopleCount)

	case "cancel":
		if len(args) != 1 {
			return errors.New("cancel needs <reservation-id>")
		}
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		if err := cmd.client.DeleteReservation(ctx, id); err != nil {
			return err
		}
		fmt.Printf("reservation %d cancelled\n", id)

	case "list":
		reservations, err := cmd.client.MyReservations(ctx)
		if err != nil {
			return err
		}
		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tRESTAURANT\tDATE\tTIME\tGUESTS")
		for _, r := range reservations {
			fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%d\n", r.ID, r.RestaurantName, r.Date, r.Time, r.PeopleCount)
		}
		return w.Flush()

	case "export":
		if len(args) != 1 {
			return errors.New("export needs <file.xlsx>")
		}
		data, err := cmd.client.ExportReservations(ctx)
		if err != nil {
			return err
		}
		if err := os.WriteFile(args[0], data, 0o644); err != nil {
			return fmt.Errorf("failed to write %s: %w", args[0], err)
		}
		fmt.Printf("wrote %s\n", args[0])

	case "watch":
		if cmd.brokers == "" {
			return errors.New("watch needs -brokers or KAFKA_BROKERS")
		}
		consumer := events.NewConsumer(strings.Split(cmd.brokers, ","), cmd.topic, "reservectl-watch")
		return consumer.Run(ctx, func(e entity.ReservationEvent) {
			fmt.Printf("%s %-9s reservation=%d restaurant=%d date=%s guests=%d\n",
				e.OccurredAt.Local().Format(time.DateTime), e.Type, e.ReservationID, e.RestaurantID, e.Date, e.PeopleCount)
		})

	default:
		flag.Usage()
		return fmt.Errorf("unknown command %q", name)
	}
	return nil
}

func (cmd *command) findReservation(ctx context.Context, id int64) (client.ReservationDetail, error) {
	mine, err := cmd.client.MyReservations(ctx)
	if err != nil {
		return client.ReservationDetail{}, err
	}
	for _, r := range mine {
		if r.ID == id {
			return r, nil
		}
	}
	return client.ReservationDetail{}, fmt.Errorf("reservation %d not found", id)
}

func reservationArgs(args []string) (client.ReservationRequest, int64, error) {
	if len(args) != 4 {
		return client.ReservationRequest{}, 0, errors.New("needs <id> <YYYY-MM-DD> <HH:MM> <people>")
	}
	id, err := parseID(args[0])
	if err != nil {
		return client.ReservationRequest{}, 0, err
	}
	var people int
	if _, err := fmt.Sscan(args[3], &people); err != nil {
		return client.ReservationRequest{}, 0, fmt.Errorf("invalid party size %q", args[3])
	}
	return client.ReservationRequest{Date: args[1], Time: args[2], PeopleCount: people}, id, nil
}

func parseID(s string) (int64, error) {
	var id int64
	if _, err := fmt.Sscan(s, &id); err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", s)
	}
	return id, nil
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
