// Package contract implements the contract governance CLI: it operates a
// local contract store through the service facade, one subcommand per
// governance operation.
package contract

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/caarlos0/env/v11"

	"github.com/louisbranch/covenant.space/internal/contract/domain"
	"github.com/louisbranch/covenant.space/internal/contract/service"
	"github.com/louisbranch/covenant.space/internal/platform/requestctx"
	"github.com/louisbranch/covenant.space/internal/storage"
	bboltstore "github.com/louisbranch/covenant.space/internal/storage/bbolt"
	sqlitestore "github.com/louisbranch/covenant.space/internal/storage/sqlite"
)

// Config holds contract command configuration.
type Config struct {
	StoragePath   string `env:"COVENANT_STORAGE_PATH"   envDefault:"covenant.db"`
	StorageDriver string `env:"COVENANT_STORAGE_DRIVER" envDefault:"sqlite"`
	CallerParty   string `env:"COVENANT_PARTY"`

	// Args holds the subcommand and its positional arguments.
	Args []string
}

// ParseConfig parses environment defaults and flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}

	fs.StringVar(&cfg.StoragePath, "storage-path", cfg.StoragePath, "path to the contract store")
	fs.StringVar(&cfg.StorageDriver, "storage-driver", cfg.StorageDriver, "storage driver (sqlite or bbolt)")
	fs.StringVar(&cfg.CallerParty, "as", cfg.CallerParty, "calling party identifier")
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}
	cfg.Args = fs.Args()
	return cfg, nil
}

// contractStore is the store surface the command needs: aggregate records,
// the event log, and a closeable handle.
type contractStore interface {
	storage.ContractStore
	storage.EventStore
	Close() error
}

func openStore(cfg Config) (contractStore, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.StorageDriver)) {
	case "", "sqlite":
		return sqlitestore.Open(cfg.StoragePath)
	case "bbolt":
		return bboltstore.Open(cfg.StoragePath)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.StorageDriver)
	}
}

// Run executes the contract command.
func Run(ctx context.Context, cfg Config, out io.Writer, errOut io.Writer) error {
	if out == nil {
		out = io.Discard
	}
	if errOut == nil {
		errOut = io.Discard
	}
	if len(cfg.Args) == 0 {
		printUsage(errOut)
		return errors.New("subcommand is required")
	}

	store, err := openStore(cfg)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			fmt.Fprintf(errOut, "close store: %v\n", err)
		}
	}()

	if caller := strings.TrimSpace(cfg.CallerParty); caller != "" {
		ctx = requestctx.WithPartyID(ctx, caller)
	}

	contracts := service.NewContractService(store, store)
	name, args := cfg.Args[0], cfg.Args[1:]

	switch name {
	case "init":
		return runInit(ctx, contracts, args, out)
	case "show":
		return runShow(ctx, contracts, args, out)
	case "party":
		return runParty(ctx, contracts, args, out)
	case "open":
		return runOpen(ctx, contracts, args, out)
	case "vote":
		return runVote(ctx, contracts, args, out, false)
	case "revise":
		return runVote(ctx, contracts, args, out, true)
	case "close":
		return runClose(ctx, contracts, args, out)
	case "session":
		return runSession(ctx, contracts, args, out)
	case "result":
		return runResult(ctx, contracts, args, out)
	case "request-right":
		return runRequestRight(ctx, contracts, args, out)
	case "accept-right":
		return runAccept(ctx, contracts, args, out, "accept-right")
	case "request-share":
		return runRequestShare(ctx, contracts, args, out)
	case "accept-share":
		return runAccept(ctx, contracts, args, out, "accept-share")
	case "events":
		return runEvents(ctx, store, args, out)
	default:
		printUsage(errOut)
		return fmt.Errorf("unknown subcommand %q", name)
	}
}

func printUsage(errOut io.Writer) {
	fmt.Fprintln(errOut, "usage: contract [flags] <subcommand> [args]")
	fmt.Fprintln(errOut, "subcommands:")
	fmt.Fprintln(errOut, "  init -rule <majority|unanimity> [-id id] [-title text] [-detail text] party=share...")
	fmt.Fprintln(errOut, "  show <contract-id>")
	fmt.Fprintln(errOut, "  party <contract-id> <party-id>")
	fmt.Fprintln(errOut, "  open <contract-id> [hint]")
	fmt.Fprintln(errOut, "  vote <contract-id> <session> <favor|against>")
	fmt.Fprintln(errOut, "  revise <contract-id> <session> <favor|against>")
	fmt.Fprintln(errOut, "  close <contract-id> <session>")
	fmt.Fprintln(errOut, "  session <contract-id> <session>")
	fmt.Fprintln(errOut, "  result <contract-id> <session>")
	fmt.Fprintln(errOut, "  request-right <contract-id> <target-party>")
	fmt.Fprintln(errOut, "  accept-right <contract-id> <request-id>")
	fmt.Fprintln(errOut, "  request-share <contract-id> <target-party> <amount>")
	fmt.Fprintln(errOut, "  accept-share <contract-id> <request-id>")
	fmt.Fprintln(errOut, "  events <contract-id>")
}

func runInit(ctx context.Context, contracts *service.ContractService, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("init", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	ruleName := fs.String("rule", "", "decision rule (majority or unanimity)")
	contractID := fs.String("id", "", "contract identifier (generated when empty)")
	title := fs.String("title", "", "contract title payload")
	detail := fs.String("detail", "", "contract detail payload")
	if err := fs.Parse(args); err != nil {
		return err
	}

	founders, err := parseFounders(fs.Args())
	if err != nil {
		return err
	}

	contract, err := contracts.InitializeContract(ctx, domain.CreateContractInput{
		ID:      *contractID,
		Title:   []byte(*title),
		Detail:  []byte(*detail),
		Rule:    domain.ParseDecisionRule(*ruleName),
		Parties: founders,
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "contract %s initialized rule=%s parties=%d total_share=%d\n",
		contract.ID, contract.Rule, len(contract.Parties), contract.TotalShare())
	return nil
}

// parseFounders reads positional party=share pairs.
func parseFounders(args []string) ([]domain.FoundingParty, error) {
	founders := make([]domain.FoundingParty, 0, len(args))
	for _, arg := range args {
		partyID, shareText, ok := strings.Cut(arg, "=")
		if !ok {
			return nil, fmt.Errorf("invalid party %q, expected id=share", arg)
		}
		share, err := strconv.ParseInt(shareText, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid share in %q: %w", arg, err)
		}
		founders = append(founders, domain.FoundingParty{ID: partyID, Share: share})
	}
	return founders, nil
}

func runShow(ctx context.Context, contracts *service.ContractService, args []string, out io.Writer) error {
	if len(args) != 1 {
		return errors.New("show requires <contract-id>")
	}
	contract, err := contracts.GetContract(ctx, args[0])
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "contract %s rule=%s title=%q detail=%q\n", contract.ID, contract.Rule, contract.Title, contract.Detail)
	for _, party := range contract.Parties {
		fmt.Fprintf(out, "party %s share=%d right=%t\n", party.ID, party.Share, party.HasRight)
	}
	for _, session := range contract.Sessions {
		fmt.Fprintf(out, "session %d open=%t done=%d favor=%d result=%s\n",
			session.Number, session.InProgress, session.VotesDone, session.VotesInFavor, session.Result)
	}
	for _, request := range append(append([]domain.CessionRequest{}, contract.RightRequests...), contract.ShareRequests...) {
		fmt.Fprintf(out, "request %s kind=%s requester=%s target=%s amount=%d resolved=%t\n",
			request.ID, request.Kind, request.RequesterID, request.TargetID, request.Amount, request.Resolved)
	}
	return nil
}

func runParty(ctx context.Context, contracts *service.ContractService, args []string, out io.Writer) error {
	if len(args) != 2 {
		return errors.New("party requires <contract-id> <party-id>")
	}
	party, err := contracts.GetParty(ctx, args[0], args[1])
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "party %s share=%d right=%t\n", party.ID, party.Share, party.HasRight)
	return nil
}

func runOpen(ctx context.Context, contracts *service.ContractService, args []string, out io.Writer) error {
	if len(args) < 1 || len(args) > 2 {
		return errors.New("open requires <contract-id> [hint]")
	}
	hint := 0
	if len(args) == 2 {
		parsed, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("invalid hint %q: %w", args[1], err)
		}
		hint = parsed
	}
	number, err := contracts.OpenVotingSession(ctx, args[0], hint)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "session %d opened\n", number)
	return nil
}

func parseBallot(value string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "favor", "for", "yes":
		return true, nil
	case "against", "no":
		return false, nil
	default:
		return false, fmt.Errorf("invalid ballot %q, expected favor or against", value)
	}
}

func runVote(ctx context.Context, contracts *service.ContractService, args []string, out io.Writer, revise bool) error {
	if len(args) != 3 {
		return errors.New("vote requires <contract-id> <session> <favor|against>")
	}
	number, err := strconv.Atoi(args[1])
	if err != nil {
		return fmt.Errorf("invalid session number %q: %w", args[1], err)
	}
	inFavor, err := parseBallot(args[2])
	if err != nil {
		return err
	}

	if revise {
		err = contracts.ReviseVote(ctx, args[0], number, inFavor)
	} else {
		err = contracts.CastVote(ctx, args[0], number, inFavor)
	}
	if err != nil {
		return err
	}

	data, err := contracts.GetSessionData(ctx, args[0], number)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "session %d done=%d favor=%d open=%t\n", number, data.VotesDone, data.VotesInFavor, data.InProgress)
	return nil
}

func runClose(ctx context.Context, contracts *service.ContractService, args []string, out io.Writer) error {
	if len(args) != 2 {
		return errors.New("close requires <contract-id> <session>")
	}
	number, err := strconv.Atoi(args[1])
	if err != nil {
		return fmt.Errorf("invalid session number %q: %w", args[1], err)
	}
	if err := contracts.TryCloseVoting(ctx, args[0], number); err != nil {
		return err
	}
	result, err := contracts.GetSessionResult(ctx, args[0], number)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "session %d closed result=%s\n", number, result)
	return nil
}

func runSession(ctx context.Context, contracts *service.ContractService, args []string, out io.Writer) error {
	if len(args) != 2 {
		return errors.New("session requires <contract-id> <session>")
	}
	number, err := strconv.Atoi(args[1])
	if err != nil {
		return fmt.Errorf("invalid session number %q: %w", args[1], err)
	}
	data, err := contracts.GetSessionData(ctx, args[0], number)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "session %d done=%d favor=%d open=%t close_date=%s\n",
		number, data.VotesDone, data.VotesInFavor, data.InProgress, formatCloseDate(data))
	return nil
}

func formatCloseDate(data domain.SessionData) string {
	if data.CloseDate.IsZero() {
		return "-"
	}
	return data.CloseDate.Format("2006-01-02T15:04:05Z07:00")
}

func runResult(ctx context.Context, contracts *service.ContractService, args []string, out io.Writer) error {
	if len(args) != 2 {
		return errors.New("result requires <contract-id> <session>")
	}
	number, err := strconv.Atoi(args[1])
	if err != nil {
		return fmt.Errorf("invalid session number %q: %w", args[1], err)
	}
	result, err := contracts.GetSessionResult(ctx, args[0], number)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "session %d result=%s\n", number, result)
	return nil
}

func runRequestRight(ctx context.Context, contracts *service.ContractService, args []string, out io.Writer) error {
	if len(args) != 2 {
		return errors.New("request-right requires <contract-id> <target-party>")
	}
	request, err := contracts.RequestRightCession(ctx, args[0], args[1])
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "request %s kind=%s target=%s\n", request.ID, request.Kind, request.TargetID)
	return nil
}

func runRequestShare(ctx context.Context, contracts *service.ContractService, args []string, out io.Writer) error {
	if len(args) != 3 {
		return errors.New("request-share requires <contract-id> <target-party> <amount>")
	}
	amount, err := strconv.ParseInt(args[2], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid amount %q: %w", args[2], err)
	}
	request, err := contracts.RequestShareCession(ctx, args[0], args[1], amount)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "request %s kind=%s target=%s amount=%d\n", request.ID, request.Kind, request.TargetID, request.Amount)
	return nil
}

func runAccept(ctx context.Context, contracts *service.ContractService, args []string, out io.Writer, name string) error {
	if len(args) != 2 {
		return fmt.Errorf("%s requires <contract-id> <request-id>", name)
	}
	var err error
	if name == "accept-right" {
		err = contracts.AcceptRightCession(ctx, args[0], args[1])
	} else {
		err = contracts.AcceptShareCession(ctx, args[0], args[1])
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "request %s accepted\n", args[1])
	return nil
}

func runEvents(ctx context.Context, store storage.EventStore, args []string, out io.Writer) error {
	if len(args) != 1 {
		return errors.New("events requires <contract-id>")
	}
	events, err := store.ListEvents(ctx, args[0])
	if err != nil {
		return err
	}
	for _, evt := range events {
		fmt.Fprintf(out, "%s type=%s party=%s session=%d request=%s detail=%q\n",
			evt.Timestamp.Format("2006-01-02T15:04:05Z07:00"), evt.Type, evt.PartyID, evt.SessionNumber, evt.RequestID, evt.Detail)
	}
	return nil
}
