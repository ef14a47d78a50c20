// tftwallet-cli is a command-line client for the ThreeFold Token wallet:
// it derives accounts from a seed phrase, synchronizes them against the
// Stellar network, and manages stored account metadata.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"sort"
	"strings"
	"syscall"
	"time"

	"golang.org/x/term"

	"github.com/jimber/tft-wallet/config"
	"github.com/jimber/tft-wallet/internal/activation"
	"github.com/jimber/tft-wallet/internal/engine"
	"github.com/jimber/tft-wallet/internal/escrow"
	"github.com/jimber/tft-wallet/internal/horizon"
	"github.com/jimber/tft-wallet/internal/log"
	"github.com/jimber/tft-wallet/internal/storage"
	"github.com/jimber/tft-wallet/internal/vesting"
	"github.com/jimber/tft-wallet/internal/wallet"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	// Parse global flags that appear before the subcommand.
	network := string(config.Production)
	dataDir := config.DefaultDataDir()
	logLevel := "warn"

	args := os.Args[1:]
	for len(args) > 0 {
		switch {
		case args[0] == "--network" && len(args) > 1:
			network = args[1]
			args = args[2:]
		case strings.HasPrefix(args[0], "--network="):
			network = args[0][len("--network="):]
			args = args[1:]
		case args[0] == "--datadir" && len(args) > 1:
			dataDir = args[1]
			args = args[2:]
		case strings.HasPrefix(args[0], "--datadir="):
			dataDir = args[0][len("--datadir="):]
			args = args[1:]
		case args[0] == "--log-level" && len(args) > 1:
			logLevel = args[1]
			args = args[2:]
		case strings.HasPrefix(args[0], "--log-level="):
			logLevel = args[0][len("--log-level="):]
			args = args[1:]
		default:
			goto dispatch
		}
	}

dispatch:
	if len(args) == 0 {
		usage()
		os.Exit(1)
	}

	if network != string(config.Production) && network != string(config.Testnet) {
		fatal("unknown network %q (want production or testnet)", network)
	}
	cfg := config.Default(config.NetworkType(network))
	cfg.DataDir = dataDir

	values, err := config.LoadFile(cfg.ConfigFile())
	if err != nil {
		fatal("config file: %v", err)
	}
	if err := config.ApplyFileConfig(cfg, values); err != nil {
		fatal("config file: %v", err)
	}
	if err := config.Validate(cfg); err != nil {
		fatal("config: %v", err)
	}
	if err := log.Init(logLevel, false, ""); err != nil {
		fatal("logging: %v", err)
	}

	cmd := args[0]
	cmdArgs := args[1:]

	switch cmd {
	case "generate":
		cmdGenerate()
	case "address":
		cmdAddress(cmdArgs)
	case "add":
		cmdAdd(cfg, cmdArgs)
	case "list":
		cmdList(cfg)
	case "remove":
		cmdRemove(cfg, cmdArgs)
	case "sync":
		cmdSync(cfg, cmdArgs)
	case "help", "--help", "-h":
		usage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", cmd)
		usage()
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintf(os.Stderr, `Usage: tftwallet-cli [global flags] <command> [flags]

Global flags:
  --network <net>     production (default) or testnet
  --datadir <path>    Data directory (default: ~/.tftwallet)
  --log-level <lvl>   trace, debug, info, warn, error (default: warn)

Commands:
  generate                        Generate a new 24-word seed phrase
  address --index <n>             Derive the account address at index n
  add --name <name> [--index <n>] [--tags a,b]
                                  Store a new account entry
  list                            List stored accounts
  remove --name <name>            Remove a stored account entry
  sync [--name <name>] [--index <n>]
                                  Synchronize one account (or all stored
                                  accounts) against the network
  help                            Show this help

Seed phrases are never stored; sync and address prompt for them.
`)
}

func cmdGenerate() {
	mnemonic, err := wallet.GenerateMnemonic()
	if err != nil {
		fatal("generate seed phrase: %v", err)
	}
	fmt.Println("Seed phrase (write this down!):")
	fmt.Printf("  %s\n", mnemonic)
}

func cmdAddress(args []string) {
	fs := flag.NewFlagSet("address", flag.ExitOnError)
	index := fs.Uint("index", 0, "Derivation index")
	fs.Parse(args)

	mnemonic := readSeedPhrase()
	kp, err := wallet.DeriveKeyPair(mnemonic, uint32(*index))
	if err != nil {
		fatal("derive keypair: %v", err)
	}
	fmt.Println(kp.Address())
}

func cmdAdd(cfg *config.Config, args []string) {
	fs := flag.NewFlagSet("add", flag.ExitOnError)
	name := fs.String("name", "", "Account name")
	index := fs.Int("index", -1, "Derivation index (default: first free)")
	tags := fs.String("tags", "", "Comma-separated tags")
	fs.Parse(args)

	if *name == "" {
		fatal("Usage: tftwallet-cli add --name <name> [--index <n>] [--tags a,b]")
	}

	store, closeDB := openAccountStore(cfg)
	defer closeDB()

	rec := storage.AccountRecord{Name: *name}
	if *tags != "" {
		rec.Tags = strings.Split(*tags, ",")
	}
	if *index >= 0 {
		rec.Index = uint32(*index)
	} else {
		next, err := store.NextIndex()
		if err != nil {
			fatal("pick derivation index: %v", err)
		}
		rec.Index = next
	}

	existing, err := store.List()
	if err != nil {
		fatal("list accounts: %v", err)
	}
	rec.Position = len(existing)

	if err := store.Add(rec); err != nil {
		fatal("add account: %v", err)
	}
	fmt.Printf("Added account %q at derivation index %d\n", rec.Name, rec.Index)
}

func cmdList(cfg *config.Config) {
	store, closeDB := openAccountStore(cfg)
	defer closeDB()

	records, err := store.List()
	if err != nil {
		fatal("list accounts: %v", err)
	}
	if len(records) == 0 {
		fmt.Println("No accounts stored.")
		return
	}
	fmt.Printf("%-20s %-8s %s\n", "NAME", "INDEX", "TAGS")
	for _, rec := range records {
		fmt.Printf("%-20s %-8d %s\n", rec.Name, rec.Index, strings.Join(rec.Tags, ","))
	}
}

func cmdRemove(cfg *config.Config, args []string) {
	fs := flag.NewFlagSet("remove", flag.ExitOnError)
	name := fs.String("name", "", "Account name")
	fs.Parse(args)

	if *name == "" {
		fatal("Usage: tftwallet-cli remove --name <name>")
	}

	store, closeDB := openAccountStore(cfg)
	defer closeDB()

	if _, err := store.Get(*name); err != nil {
		fatal("account %q: %v", *name, err)
	}
	if err := store.Remove(*name); err != nil {
		fatal("remove account: %v", err)
	}
	fmt.Printf("Removed account %q\n", *name)
}

func cmdSync(cfg *config.Config, args []string) {
	fs := flag.NewFlagSet("sync", flag.ExitOnError)
	name := fs.String("name", "", "Stored account to synchronize (default: all)")
	index := fs.Int("index", -1, "Ad-hoc derivation index (skips stored accounts)")
	timeout := fs.Duration("timeout", 2*time.Minute, "Synchronization timeout")
	fs.Parse(args)

	var records []storage.AccountRecord
	if *index >= 0 {
		records = []storage.AccountRecord{{Name: fmt.Sprintf("index-%d", *index), Index: uint32(*index)}}
	} else {
		store, closeDB := openAccountStore(cfg)
		if *name != "" {
			rec, err := store.Get(*name)
			if err != nil {
				closeDB()
				fatal("account %q: %v", *name, err)
			}
			records = []storage.AccountRecord{rec}
		} else {
			var err error
			records, err = store.List()
			if err != nil {
				closeDB()
				fatal("list accounts: %v", err)
			}
		}
		closeDB()
	}
	if len(records) == 0 {
		fatal("no accounts to synchronize; add one first or pass --index")
	}

	mnemonic := readSeedPhrase()
	eng := buildEngine(cfg)

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	failed := 0
	for _, rec := range records {
		snap, err := eng.FetchAccount(ctx, engine.Params{
			SeedPhrase: mnemonic,
			Index:      rec.Index,
			Name:       rec.Name,
			Tags:       rec.Tags,
			Position:   rec.Position,
			Converted:  rec.Converted,
		})
		if err != nil {
			failed++
			if errors.Is(err, engine.ErrActivationNeedsManualFlow) {
				fmt.Fprintf(os.Stderr, "%s: no balance to migrate; activate the account manually\n", rec.Name)
				continue
			}
			fmt.Fprintf(os.Stderr, "%s: %v\n", rec.Name, err)
			if snap == nil {
				continue
			}
		}
		printSnapshot(snap)
	}
	if failed > 0 {
		os.Exit(1)
	}
}

func printSnapshot(snap *engine.AccountSnapshot) {
	fmt.Printf("Account %s (index %d)\n", snap.Name, snap.Index)
	fmt.Printf("  Address: %s\n", snap.ID)
	if snap.Err {
		fmt.Println("  State:   could not be resolved")
		return
	}
	for _, b := range snap.Balances {
		fmt.Printf("  %-8s %s\n", b.AssetCode, b.Amount)
	}
	if len(snap.LockedBalances) > 0 {
		codes := make([]string, 0, len(snap.LockedBalances))
		for code := range snap.LockedBalances {
			codes = append(codes, code)
		}
		sort.Strings(codes)
		fmt.Println("  Locked:")
		for _, code := range codes {
			fmt.Printf("    %-8s %s\n", code, snap.LockedBalances[code])
		}
	}
	if !snap.VestedBalance.IsZero() {
		fmt.Printf("  Vested:  %s\n", snap.VestedBalance)
	}
}

func buildEngine(cfg *config.Config) *engine.Engine {
	timeout := time.Duration(cfg.Horizon.TimeoutSeconds) * time.Second
	svcs := engine.Services{
		Ledger: horizon.NewWithTimeout(cfg.Horizon.URL, timeout),
		Activer: activation.New(cfg.Activation.URL, cfg.Activation.FriendbotURL,
			cfg.Activation.TrustLineURL, timeout),
		Escrow:  escrow.New(cfg.Escrow.URL, timeout),
		Vesting: vesting.New(cfg.Vesting.URL, timeout),
	}
	return engine.New(cfg, svcs, engine.NewMemoryRegistry())
}

func openAccountStore(cfg *config.Config) (*storage.AccountStore, func()) {
	db, err := storage.NewBadger(cfg.AccountsDir())
	if err != nil {
		fatal("open wallet database: %v", err)
	}
	store := storage.NewAccountStore(db, string(cfg.Network))
	return store, func() { db.Close() }
}

func readSeedPhrase() string {
	fmt.Fprint(os.Stderr, "Enter seed phrase: ")
	phrase, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Fprintln(os.Stderr) // newline after hidden input
	if err != nil {
		fatal("read seed phrase: %v", err)
	}
	mnemonic := strings.TrimSpace(string(phrase))
	if err := wallet.ValidateMnemonic(mnemonic); err != nil {
		fatal("seed phrase: %v", err)
	}
	return mnemonic
}

func fatal(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
	os.Exit(1)
}
