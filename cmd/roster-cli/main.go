// roster-cli is a terminal front end for the roster API.
//
//	roster-cli users list
//	roster-cli users create -name Alice -email a@x.com
//	roster-cli users update -id 1 -name Alice -email alice@x.com
//	roster-cli users delete -id 1
//	roster-cli -token $TOKEN students list
//	roster-cli -token $TOKEN students bulk -file students.json
//	roster-cli token -secret change-me -sub dev -ttl 1h
//
// The API base URL comes from -api or ROSTER_API_URL and the bearer token
// from -token or ROSTER_TOKEN.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/aanand-mishra/roster-api/internal/auth"
	"github.com/aanand-mishra/roster-api/internal/client"
	"github.com/aanand-mishra/roster-api/internal/types"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stdin); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, out io.Writer, in io.Reader) error {
	global := flag.NewFlagSet("roster-cli", flag.ContinueOnError)
	apiURL := global.String("api", envOr("ROSTER_API_URL", client.DefaultBaseURL), "API base URL")
	token := global.String("token", os.Getenv("ROSTER_TOKEN"), "bearer token for student mutations")
	verbose := global.Bool("v", false, "log client errors to stderr")

	if err := global.Parse(args); err != nil {
		return err
	}

	rest := global.Args()
	if len(rest) == 0 {
		return errors.New("usage: roster-cli [flags] users|students|token ...")
	}

	level := slog.LevelWarn
	if *verbose {
		level = slog.LevelDebug
	}
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	var opts []client.Option
	if *token != "" {
		opts = append(opts, client.WithTokenSource(client.StaticToken(*token)))
	}
	c := client.New(*apiURL, opts...)

	switch rest[0] {
	case "users":
		return runUsers(ctx, client.NewUserView(c, log), rest[1:], out)
	case "students":
		return runStudents(ctx, c, client.NewStudentView(c, log), rest[1:], out, in)
	case "token":
		return runToken(rest[1:], out)
	default:
		return fmt.Errorf("unknown command %q", rest[0])
	}
}

func runUsers(ctx context.Context, view *client.View[types.User, types.UserInput], args []string, out io.Writer) error {
	if len(args) == 0 {
		return errors.New("usage: roster-cli users list|create|update|delete")
	}

	fs := flag.NewFlagSet("users "+args[0], flag.ContinueOnError)
	id := fs.Int64("id", 0, "user id")
	name := fs.String("name", "", "user name")
	email := fs.String("email", "", "user email")
	if err := fs.Parse(args[1:]); err != nil {
		return err
	}

	if err := view.Load(ctx); err != nil {
		return err
	}

	switch args[0] {
	case "list":
	case "create":
		if !view.Create(ctx, types.UserInput{Name: *name, Email: *email}) {
			return errors.New(view.CreateError().Message)
		}
	case "update":
		if !view.Update(ctx, *id, types.UserInput{Name: *name, Email: *email}) {
			return errors.New(view.UpdateError().Message)
		}
	case "delete":
		view.Delete(ctx, *id)
	default:
		return fmt.Errorf("unknown users command %q", args[0])
	}

	return client.RenderCards(out, view.Items(), client.UserCard)
}

func runStudents(ctx context.Context, c *client.Client, view *client.View[types.Student, types.StudentInput], args []string, out io.Writer, in io.Reader) error {
	if len(args) == 0 {
		return errors.New("usage: roster-cli students list|create|update|delete|bulk")
	}

	fs := flag.NewFlagSet("students "+args[0], flag.ContinueOnError)
	id := fs.Int64("id", 0, "student id")
	name := fs.String("name", "", "student name")
	course := fs.String("course", "", "course name")
	file := fs.String("file", "-", "bulk input JSON file (- for stdin)")
	if err := fs.Parse(args[1:]); err != nil {
		return err
	}

	if err := view.Authenticate(ctx); err != nil {
		return fmt.Errorf("students require a token (-token or ROSTER_TOKEN): %w", err)
	}

	if args[0] == "bulk" {
		batch, err := readBatch(*file, in)
		if err != nil {
			return err
		}
		created, err := c.BulkCreateStudents(ctx, batch)
		if err != nil {
			return err
		}
		return client.RenderCards(out, created, client.StudentCard)
	}

	if err := view.Load(ctx); err != nil {
		return err
	}

	input := types.StudentInput{StudentName: *name, CourseName: *course}

	switch args[0] {
	case "list":
	case "create":
		if !view.Create(ctx, input) {
			return errors.New(view.CreateError().Message)
		}
	case "update":
		if !view.Update(ctx, *id, input) {
			return errors.New(view.UpdateError().Message)
		}
	case "delete":
		view.Delete(ctx, *id)
	default:
		return fmt.Errorf("unknown students command %q", args[0])
	}

	return client.RenderCards(out, view.Items(), client.StudentCard)
}

func runToken(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("token", flag.ContinueOnError)
	secret := fs.String("secret", os.Getenv("AUTH_SECRET"), "HS256 signing secret")
	sub := fs.String("sub", "dev", "token subject")
	issuer := fs.String("issuer", os.Getenv("AUTH_ISSUER"), "token issuer")
	audience := fs.String("audience", os.Getenv("AUTH_AUDIENCE"), "token audience")
	ttl := fs.Duration("ttl", time.Hour, "token lifetime")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *secret == "" {
		return errors.New("token: -secret or AUTH_SECRET is required")
	}

	token, err := auth.GenerateToken(*sub, *secret, *issuer, *audience, *ttl)
	if err != nil {
		return err
	}

	_, err = fmt.Fprintln(out, token)
	return err
}

func readBatch(path string, stdin io.Reader) ([]types.StudentInput, error) {
	r := stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open bulk file: %w", err)
		}
		defer f.Close()
		r = f
	}

	var batch []types.StudentInput
	if err := json.NewDecoder(r).Decode(&batch); err != nil {
		return nil, fmt.Errorf("decode bulk file: %w", err)
	}

	return batch, nil
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
