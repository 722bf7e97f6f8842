package node

import (
	"fmt"
	"os"

	"golang.org/x/term"

	"github.com/frostlabs/frostgate/internal/wallet"
)

// passwordEnv lets headless deployments supply the wallet password
// without a terminal.
const passwordEnv = "FROSTGATE_WALLET_PASSWORD"

// openWallet unlocks the named wallet, creating it first if the keystore
// has no wallet with that name.
func openWallet(ks *wallet.Keystore, name string) (*wallet.Service, error) {
	names, err := ks.List()
	if err != nil {
		return nil, fmt.Errorf("list wallets: %w", err)
	}

	exists := false
	for _, n := range names {
		if n == name {
			exists = true
			break
		}
	}

	if !exists {
		if err := createWallet(ks, name); err != nil {
			return nil, err
		}
	}

	password, err := readPassword(fmt.Sprintf("Password for wallet %q: ", name))
	if err != nil {
		return nil, err
	}
	defer zero(password)

	return wallet.Unlock(ks, name, password)
}

// createWallet generates a fresh mnemonic, shows it once, and writes the
// encrypted wallet file.
func createWallet(ks *wallet.Keystore, name string) error {
	mnemonic, err := wallet.GenerateMnemonic()
	if err != nil {
		return fmt.Errorf("generate mnemonic: %w", err)
	}

	fmt.Printf("Creating wallet %q.\n\n", name)
	fmt.Println("Recovery phrase (write it down, it is shown only once):")
	fmt.Printf("\n  %s\n\n", mnemonic)

	password, err := readNewPassword()
	if err != nil {
		return err
	}
	defer zero(password)

	seed, err := wallet.SeedFromMnemonic(mnemonic, "")
	if err != nil {
		return fmt.Errorf("derive seed: %w", err)
	}
	defer zero(seed)

	return ks.Create(name, seed, password, wallet.DefaultParams())
}

// readPassword reads a password without echo, or from the environment
// when no terminal is attached.
func readPassword(prompt string) ([]byte, error) {
	if env := os.Getenv(passwordEnv); env != "" {
		return []byte(env), nil
	}

	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return nil, fmt.Errorf("no terminal attached; set %s", passwordEnv)
	}

	fmt.Print(prompt)
	password, err := term.ReadPassword(fd)
	fmt.Println()
	if err != nil {
		return nil, fmt.Errorf("read password: %w", err)
	}
	return password, nil
}

// readNewPassword prompts for a password twice and verifies both entries
// match.
func readNewPassword() ([]byte, error) {
	if env := os.Getenv(passwordEnv); env != "" {
		return []byte(env), nil
	}

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
			zero(first)
			return nil, err
		}
		if string(first) == string(second) {
			zero(second)
			return first, nil
		}
		zero(first)
		zero(second)
		fmt.Println("Passwords do not match, try again.")
	}
}

func zero(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
