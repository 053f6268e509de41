package commands

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

var AuthoriseCmd = Authorise{
	command: command{
		workdir:     DEFAULT_WORKDIR,
		credentials: DEFAULT_CREDENTIALS,
		tokens:      "",
		debug:       false,
	},

	in: os.Stdin,
}

type Authorise struct {
	command
	in io.Reader
}

func (cmd *Authorise) Name() string {
	return "authorise"
}

func (cmd *Authorise) Description() string {
	return "Authorises openproject-app-sheets to access Google Sheets worksheets"
}

func (cmd *Authorise) Usage() string {
	return "--credentials <file>"
}

func (cmd *Authorise) Help() {
	fmt.Println()
	fmt.Printf("  Usage: %s [--debug] authorise [options] --credentials <file>\n", APP)
	fmt.Println()
	fmt.Println("  Authorises openproject-app-sheets to access Google Sheets worksheets with OAuth client credentials and")
	fmt.Println("  stores the authorisation token in the tokens directory. Service account credentials do not need to be")
	fmt.Println("  authorised.")
	fmt.Println()

	helpOptions(cmd.FlagSet())

	fmt.Println()
	fmt.Println("  Examples:")
	fmt.Println(`    openproject-app-sheets authorise --credentials "credentials.json"`)
	fmt.Println()
}

func (cmd *Authorise) FlagSet() *flag.FlagSet {
	flagset := flag.NewFlagSet("authorise", flag.ExitOnError)

	flagset.StringVar(&cmd.workdir, "workdir", cmd.workdir, "Directory for working files (tokens, etc)")
	flagset.StringVar(&cmd.credentials, "credentials", cmd.credentials, "Path for the 'credentials.json' file")
	flagset.StringVar(&cmd.tokens, "tokens", cmd.tokens, "Directory for the authorisation tokens. Defaults to <workdir>/.google")

	return flagset
}

func (cmd *Authorise) Execute(args ...any) error {
	options := args[0].(*Options)

	cmd.debug = options.Debug

	// ... check parameters
	if strings.TrimSpace(cmd.credentials) == "" {
		return fmt.Errorf("--credentials is a required option")
	}

	b, err := os.ReadFile(cmd.credentials)
	if err != nil {
		return err
	}

	if isServiceAccount(b) {
		infof("%v contains service account credentials - no authorisation required", cmd.credentials)
		return nil
	}

	config, err := google.ConfigFromJSON(b, SHEETS)
	if err != nil {
		return fmt.Errorf("invalid OAuth client credentials (%v)", err)
	}

	token, err := cmd.exchange(context.Background(), config)
	if err != nil {
		return fmt.Errorf("authorisation error (%v)", err)
	}

	tokens := tokensFile(cmd.credentials, cmd.tokensDir())
	if err := saveToken(tokens, token); err != nil {
		return err
	}

	infof("saved authorisation token to %v", tokens)

	return nil
}

// exchange prompts for the authorisation code issued by the Google consent page and exchanges
// it for an access token.
func (cmd *Authorise) exchange(ctx context.Context, config *oauth2.Config) (*oauth2.Token, error) {
	url := config.AuthCodeURL("state-token", oauth2.AccessTypeOffline)

	fmt.Println()
	fmt.Println("Open the following link in your browser and then enter the authorisation code:")
	fmt.Println()
	fmt.Printf("  %v\n", url)
	fmt.Println()
	fmt.Print("Authorisation code: ")

	code, err := bufio.NewReader(cmd.in).ReadString('\n')
	if err != nil && code == "" {
		return nil, fmt.Errorf("unable to read authorisation code (%v)", err)
	}

	code = strings.TrimSpace(code)
	if code == "" {
		return nil, fmt.Errorf("missing authorisation code")
	}

	if cmd.debug {
		debugf("exchanging authorisation code for token")
	}

	return config.Exchange(ctx, code)
}
