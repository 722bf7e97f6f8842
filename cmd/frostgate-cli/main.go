// frostgate-cli is a command-line client for a running frostgated daemon.
// It speaks the same WebSocket protocol dApps use, from a trusted local
// origin, and also manages wallet files directly in the keystore.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gorilla/websocket"
	"golang.org/x/term"

	"github.com/frostlabs/frostgate/config"
	"github.com/frostlabs/frostgate/internal/contacts"
	"github.com/frostlabs/frostgate/internal/wallet"
)

// keystoreDir returns the keystore path matching frostgated's layout:
// <datadir>/<network>/keystore
func keystoreDir(dataDir, network string) string {
	return filepath.Join(dataDir, network, "keystore")
}

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	// Parse global flags that appear before the subcommand.
	url := "ws://127.0.0.1:8178/"
	dataDir := config.DefaultDataDir()
	network := "mainnet"

	args := os.Args[1:]
	for len(args) > 0 {
		switch {
		case args[0] == "--url" && len(args) > 1:
			url = args[1]
			args = args[2:]
		case strings.HasPrefix(args[0], "--url="):
			url = args[0][len("--url="):]
			args = args[1:]
		case args[0] == "--datadir" && len(args) > 1:
			dataDir = args[1]
			args = args[2:]
		case strings.HasPrefix(args[0], "--datadir="):
			dataDir = args[0][len("--datadir="):]
			args = args[1:]
		case args[0] == "--network" && len(args) > 1:
			network = args[1]
			args = args[2:]
		case strings.HasPrefix(args[0], "--network="):
			network = args[0][len("--network="):]
			args = args[1:]
		case args[0] == "--testnet":
			network = "testnet"
			url = "ws://127.0.0.1:8179/"
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

	ksDir := keystoreDir(dataDir, network)
	cmd := args[0]
	cmdArgs := args[1:]

	switch cmd {
	case "accounts":
		cmdAccounts(url)
	case "select":
		cmdSelect(url, cmdArgs)
	case "contacts":
		cmdContacts(url, cmdArgs)
	case "sign":
		cmdSign(url, cmdArgs)
	case "switch-chain":
		cmdSwitchChain(url, cmdArgs)
	case "raw":
		cmdRaw(url, cmdArgs)
	case "wallet":
		cmdWallet(cmdArgs, ksDir)
	case "help", "--help", "-h":
		usage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", cmd)
		usage()
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintf(os.Stderr, `Usage: frostgate-cli [global flags] <command> [flags]

Global flags:
  --url <ws-url>      Daemon endpoint (default: ws://127.0.0.1:8178/)
  --datadir <path>    Data directory (default: ~/.frostgate)
  --network <net>     mainnet (default) or testnet
  --testnet           Shorthand for --network=testnet

Commands:
  accounts                        List wallet accounts
  select <index>                  Switch the active account
  sign <message>                  Sign a message with the active account

  contacts list                   List address book entries
  contacts add --name <n> --address <0x..> [--address-xp <X-..>]
                                  Add an address book entry
  contacts remove <id>            Remove an address book entry

  switch-chain <chain-id>         Switch the active network

  wallet create --name <n>        Create a new wallet
  wallet import --name <n> --mnemonic "..."
                                  Import wallet from mnemonic
  wallet list                     List wallets

  raw <method> [params-json]      Send an arbitrary request

Requests that need consent stay pending until approved on the daemon
console.
`)
}

// ── daemon connection ───────────────────────────────────────────────────

// frame mirrors the daemon's wire format in both directions.
type frame struct {
	ID     uint64          `json:"id"`
	Method string          `json:"method,omitempty"`
	Params interface{}     `json:"params,omitempty"`
	Peer   interface{}     `json:"peer,omitempty"`
	Result json.RawMessage `json:"result,omitempty"`
	Error  *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// call dials the daemon, sends one request, and waits for its response.
// The localhost origin marks the connection as trusted.
func call(url, method string, params interface{}) (json.RawMessage, error) {
	header := http.Header{"Origin": []string{"http://localhost"}}
	ws, _, err := websocket.DefaultDialer.Dial(url, header)
	if err != nil {
		return nil, fmt.Errorf("connect to %s: %w", url, err)
	}
	defer ws.Close()

	req := frame{
		ID:     1,
		Method: method,
		Params: params,
		Peer:   map[string]string{"name": "frostgate-cli", "url": "http://localhost"},
	}
	if err := ws.WriteJSON(req); err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}

	// No deadline: consent requests wait for daemon-side approval.
	for {
		var resp frame
		if err := ws.ReadJSON(&resp); err != nil {
			return nil, fmt.Errorf("read response: %w", err)
		}
		if resp.ID != req.ID {
			continue
		}
		if resp.Error != nil {
			return nil, fmt.Errorf("%s (code %d)", resp.Error.Message, resp.Error.Code)
		}
		return resp.Result, nil
	}
}

// ── accounts ────────────────────────────────────────────────────────────

func cmdAccounts(url string) {
	raw, err := call(url, "avalanche_getAccounts", nil)
	if err != nil {
		fatal("avalanche_getAccounts: %v", err)
	}

	var accounts []struct {
		Index      uint32 `json:"index"`
		Name       string `json:"name"`
		AddressEVM string `json:"address"`
		AddressX   string `json:"addressAVM"`
		AddressP   string `json:"addressPVM"`
		Active     bool   `json:"active"`
	}
	if err := json.Unmarshal(raw, &accounts); err != nil {
		fatal("decode accounts: %v", err)
	}

	for _, a := range accounts {
		marker := " "
		if a.Active {
			marker = "*"
		}
		fmt.Printf("%s [%d] %s\n", marker, a.Index, a.Name)
		fmt.Printf("    C: %s\n", a.AddressEVM)
		fmt.Printf("    X: %s\n", a.AddressX)
		fmt.Printf("    P: %s\n", a.AddressP)
	}
}

func cmdSelect(url string, args []string) {
	if len(args) < 1 {
		fatal("Usage: frostgate-cli select <index>")
	}
	index, err := strconv.ParseUint(args[0], 10, 32)
	if err != nil {
		fatal("invalid account index %q", args[0])
	}

	fmt.Println("Waiting for approval on the daemon console...")
	if _, err := call(url, "avalanche_selectAccount", map[string]uint32{"index": uint32(index)}); err != nil {
		fatal("avalanche_selectAccount: %v", err)
	}
	fmt.Printf("Active account is now %d\n", index)
}

// ── sign ────────────────────────────────────────────────────────────────

func cmdSign(url string, args []string) {
	if len(args) < 1 {
		fatal("Usage: frostgate-cli sign <message>")
	}
	message := strings.Join(args, " ")

	// Resolve the active account's EVM address first.
	raw, err := call(url, "avalanche_getAccounts", nil)
	if err != nil {
		fatal("avalanche_getAccounts: %v", err)
	}
	var accounts []struct {
		AddressEVM string `json:"address"`
		Active     bool   `json:"active"`
	}
	if err := json.Unmarshal(raw, &accounts); err != nil {
		fatal("decode accounts: %v", err)
	}
	address := ""
	for _, a := range accounts {
		if a.Active {
			address = a.AddressEVM
		}
	}
	if address == "" {
		fatal("no active account")
	}

	fmt.Println("Waiting for approval on the daemon console...")
	sig, err := call(url, "personal_sign", []string{message, address})
	if err != nil {
		fatal("personal_sign: %v", err)
	}
	fmt.Printf("Signature: %s\n", strings.Trim(string(sig), `"`))
}

// ── contacts ────────────────────────────────────────────────────────────

func cmdContacts(url string, args []string) {
	if len(args) < 1 {
		fatal("Usage: frostgate-cli contacts <list|add|remove>")
	}

	switch args[0] {
	case "list":
		raw, err := call(url, "avalanche_getContacts", nil)
		if err != nil {
			fatal("avalanche_getContacts: %v", err)
		}
		var list []contacts.Contact
		if err := json.Unmarshal(raw, &list); err != nil {
			fatal("decode contacts: %v", err)
		}
		if len(list) == 0 {
			fmt.Println("No contacts.")
			return
		}
		for _, c := range list {
			fmt.Printf("%s  %s\n", c.ID, c.Name)
			if c.Address != "" {
				fmt.Printf("    C: %s\n", c.Address)
			}
			if c.AddressXP != "" {
				fmt.Printf("    X/P: %s\n", c.AddressXP)
			}
		}

	case "add":
		fs := flag.NewFlagSet("contacts add", flag.ExitOnError)
		name := fs.String("name", "", "Contact name")
		address := fs.String("address", "", "EVM address")
		addressXP := fs.String("address-xp", "", "X/P chain address")
		fs.Parse(args[1:])
		if *name == "" {
			fatal("Usage: frostgate-cli contacts add --name <n> --address <0x..>")
		}

		fmt.Println("Waiting for approval on the daemon console...")
		raw, err := call(url, "avalanche_createContact", map[string]interface{}{
			"contact": contacts.Contact{Name: *name, Address: *address, AddressXP: *addressXP},
		})
		if err != nil {
			fatal("avalanche_createContact: %v", err)
		}
		var created contacts.Contact
		if err := json.Unmarshal(raw, &created); err != nil {
			fatal("decode contact: %v", err)
		}
		fmt.Printf("Created contact %s (%s)\n", created.Name, created.ID)

	case "remove":
		if len(args) < 2 {
			fatal("Usage: frostgate-cli contacts remove <id>")
		}
		fmt.Println("Waiting for approval on the daemon console...")
		if _, err := call(url, "avalanche_removeContact", map[string]string{"id": args[1]}); err != nil {
			fatal("avalanche_removeContact: %v", err)
		}
		fmt.Println("Contact removed.")

	default:
		fatal("Unknown contacts command %q", args[0])
	}
}

// ── chain ───────────────────────────────────────────────────────────────

func cmdSwitchChain(url string, args []string) {
	if len(args) < 1 {
		fatal("Usage: frostgate-cli switch-chain <chain-id>")
	}

	fmt.Println("Waiting for approval on the daemon console...")
	_, err := call(url, "wallet_switchEthereumChain", []map[string]string{{"chainId": args[0]}})
	if err != nil {
		fatal("wallet_switchEthereumChain: %v", err)
	}
	fmt.Printf("Active chain is now %s\n", args[0])
}

// ── raw ─────────────────────────────────────────────────────────────────

func cmdRaw(url string, args []string) {
	if len(args) < 1 {
		fatal("Usage: frostgate-cli raw <method> [params-json]")
	}

	var params interface{}
	if len(args) > 1 {
		if err := json.Unmarshal([]byte(args[1]), &params); err != nil {
			fatal("invalid params JSON: %v", err)
		}
	}

	raw, err := call(url, args[0], params)
	if err != nil {
		fatal("%s: %v", args[0], err)
	}

	var pretty interface{}
	if err := json.Unmarshal(raw, &pretty); err == nil {
		out, _ := json.MarshalIndent(pretty, "", "  ")
		fmt.Println(string(out))
	} else {
		fmt.Println(string(raw))
	}
}

// ── wallet (local keystore) ─────────────────────────────────────────────

func cmdWallet(args []string, ksDir string) {
	if len(args) < 1 {
		fatal("Usage: frostgate-cli wallet <create|import|list>")
	}

	ks, err := wallet.NewKeystore(ksDir)
	if err != nil {
		fatal("open keystore: %v", err)
	}

	switch args[0] {
	case "create":
		fs := flag.NewFlagSet("wallet create", flag.ExitOnError)
		name := fs.String("name", "", "Wallet name")
		fs.Parse(args[1:])
		if *name == "" {
			fatal("Usage: frostgate-cli wallet create --name <n>")
		}

		mnemonic, err := wallet.GenerateMnemonic()
		if err != nil {
			fatal("generate mnemonic: %v", err)
		}
		fmt.Println("Recovery phrase (write it down, it is shown only once):")
		fmt.Printf("\n  %s\n\n", mnemonic)

		createFromMnemonic(ks, *name, mnemonic)
		fmt.Printf("Wallet %q created in %s\n", *name, ksDir)

	case "import":
		fs := flag.NewFlagSet("wallet import", flag.ExitOnError)
		name := fs.String("name", "", "Wallet name")
		mnemonic := fs.String("mnemonic", "", "Recovery phrase")
		fs.Parse(args[1:])
		if *name == "" || *mnemonic == "" {
			fatal(`Usage: frostgate-cli wallet import --name <n> --mnemonic "..."`)
		}
		if !wallet.ValidateMnemonic(*mnemonic) {
			fatal("invalid mnemonic")
		}

		createFromMnemonic(ks, *name, *mnemonic)
		fmt.Printf("Wallet %q imported into %s\n", *name, ksDir)

	case "list":
		names, err := ks.List()
		if err != nil {
			fatal("list wallets: %v", err)
		}
		if len(names) == 0 {
			fmt.Println("No wallets.")
			return
		}
		for _, n := range names {
			fmt.Println(n)
		}

	default:
		fatal("Unknown wallet command %q", args[0])
	}
}

func createFromMnemonic(ks *wallet.Keystore, name, mnemonic string) {
	password, err := readNewPassword()
	if err != nil {
		fatal("read password: %v", err)
	}

	seed, err := wallet.SeedFromMnemonic(mnemonic, "")
	if err != nil {
		fatal("derive seed: %v", err)
	}

	if err := ks.Create(name, seed, password, wallet.DefaultParams()); err != nil {
		fatal("create wallet: %v", err)
	}
	for i := range seed {
		seed[i] = 0
	}
	for i := range password {
		password[i] = 0
	}
}

func readPassword(prompt string) ([]byte, error) {
	fmt.Print(prompt)
	password, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Println()
	return password, err
}

func readNewPassword() ([]byte, error) {
	for {
		first, err := readPassword("New password: ")
		if err != nil {
			return nil, err
		}
		if len(first) == 0 {
			fmt.Println("Password must not be empty.")
			continue
		}
		second, err := readPassword("Confirm password: ")
		if err != nil {
			return nil, err
		}
		if string(first) == string(second) {
			return first, nil
		}
		fmt.Println("Passwords do not match, try again.")
	}
}

func fatal(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
	os.Exit(1)
}
