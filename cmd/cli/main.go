// Command fc is a CLI client for the flashcards JSON API.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"
)

// ---- utils ----

func readAll(p string) ([]byte, error) {
	if p == "-" {
		return io.ReadAll(os.Stdin)
	}
	return os.ReadFile(p)
}

func printJSON(v any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}

func usage() {
	fmt.Fprintf(os.Stderr, `fc CLI
Usage:
  fc -addr URL <cmd> [args]

Commands:
  version
  login       -token <session token | ->    (saves token)
  logout
  deck-create -name <name> [-desc <text>]
  deck-edit   -id <deck> -name <name> [-desc <text>]
  deck-rm     -id <deck>
  card-add    -deck <deck> -front <text> -back <text>
  card-edit   -id <card> -front <text> -back <text>
  card-rm     -id <card>
  import      -deck <deck> -file <cards.tsv | ->  (front<TAB>back per line)
`)
	os.Exit(2)
}

// ---- main ----

var (
	version   = "dev"
	buildDate = "unknown"
)

// main dispatches subcommands against the server's /api endpoints.
func main() {
	// global flags
	addr := flag.String("addr", "http://localhost:8080", "server base URL")
	flag.Usage = usage
	flag.Parse()

	if flag.NArg() < 1 {
		usage()
	}
	cmd, args := flag.Arg(0), flag.Args()[1:]

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	switch cmd {
	case "version":
		fmt.Printf("fc %s (%s)\n", version, buildDate)
		return

	case "login":
		fs := flag.NewFlagSet("login", flag.ExitOnError)
		tok := fs.String("token", "", "session token issued by the identity provider")
		_ = fs.Parse(args)
		if *tok == "-" {
			b, err := readAll("-")
			if err != nil {
				fail(err)
			}
			*tok = strings.TrimSpace(string(b))
		}
		if *tok == "" {
			fmt.Fprintln(os.Stderr, "need -token")
			os.Exit(1)
		}
		exp, err := tokenExpiry(*tok)
		if err != nil {
			fail(err)
		}
		if err := saveToken(*tok, exp); err != nil {
			fail(err)
		}
		fmt.Printf("logged in until %s\n", exp.UTC().Format(time.RFC3339))
		return

	case "logout":
		if err := removeToken(); err != nil {
			fail(err)
		}
		return
	}

	tok, err := loadToken()
	if err != nil {
		fail(err)
	}
	c := &apiClient{base: *addr, token: tok, hc: &http.Client{Timeout: 15 * time.Second}}
	if err := run(ctx, c, cmd, args); err != nil {
		fail(err)
	}
}

// run executes one authenticated subcommand.
func run(ctx context.Context, c *apiClient, cmd string, args []string) error {
	fs := flag.NewFlagSet(cmd, flag.ContinueOnError)
	id := fs.Int64("id", 0, "deck or card id")
	deck := fs.Int64("deck", 0, "deck id")
	name := fs.String("name", "", "deck name")
	desc := fs.String("desc", "", "deck description")
	front := fs.String("front", "", "card front")
	back := fs.String("back", "", "card back")
	file := fs.String("file", "", "TSV file or - for stdin")
	if err := fs.Parse(args); err != nil {
		return err
	}

	var (
		res any
		err error
	)
	switch cmd {
	case "deck-create":
		res, err = c.createDeck(ctx, *name, *desc)
	case "deck-edit":
		res, err = c.updateDeck(ctx, *id, *name, *desc)
	case "deck-rm":
		res, err = c.deleteDeck(ctx, *id)
	case "card-add":
		res, err = c.createCard(ctx, *deck, *front, *back)
	case "card-edit":
		res, err = c.updateCard(ctx, *id, *front, *back)
	case "card-rm":
		res, err = c.deleteCard(ctx, *id)
	case "import":
		b, rerr := readAll(*file)
		if rerr != nil {
			return rerr
		}
		pairs, perr := parseTSV(strings.NewReader(string(b)))
		if perr != nil {
			return perr
		}
		n, ierr := c.importCards(ctx, *deck, pairs)
		res, err = map[string]int{"imported": n}, ierr
	default:
		return fmt.Errorf("unknown command %q", cmd)
	}
	if err != nil {
		return err
	}
	printJSON(res)
	return nil
}

func fail(err error) {
	fmt.Fprintln(os.Stderr, err)
	os.Exit(1)
}
