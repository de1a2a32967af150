package secrets

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/zalando/go-keyring"
)

const (
	// KeyringService groups this app's secrets in the OS keychain.
	KeyringService = "jobradar"

	envAddress  = "GMAIL_ADDRESS"
	envPassword = "GMAIL_APP_PASSWORD"
)

// MailboxCredentials resolves the inbox-alert credentials: environment first
// (the cron-friendly path), keychain as fallback. Both empty is a normal
// "lane disabled" state, reported via the ok flag, not an error.
func MailboxCredentials(imapHost string) (address, password string, ok bool) {
	address = strings.TrimSpace(os.Getenv(envAddress))
	if address == "" {
		return "", "", false
	}

	password = strings.TrimSpace(os.Getenv(envPassword))
	if password == "" {
		if pw, err := keyring.Get(KeyringService, keyringAccount(address, imapHost)); err == nil {
			password = strings.TrimSpace(pw)
		}
	}
	if password == "" {
		return "", "", false
	}
	return address, password, true
}

// SetMailboxPassword stores the app password in the OS keychain.
func SetMailboxPassword(address, imapHost, password string) error {
	if strings.TrimSpace(address) == "" {
		return errors.New("mailbox address is empty")
	}
	if strings.TrimSpace(password) == "" {
		return errors.New("password is empty")
	}
	return keyring.Set(KeyringService, keyringAccount(address, imapHost), password)
}

func DeleteMailboxPassword(address, imapHost string) error {
	if strings.TrimSpace(address) == "" {
		return errors.New("mailbox address is empty")
	}
	return keyring.Delete(KeyringService, keyringAccount(address, imapHost))
}

func keyringAccount(address, imapHost string) string {
	return fmt.Sprintf("jobradar:imap:%s@%s", address, imapHost)
}
