package cmd_test

import (
	"bytes"
	"encoding/base64"
	"io"
	"strings"
	"testing"

	"github.com/dnitsch/aws-saml-creds/cmd"
)

// resetHelpFlags clears the help flag cobra records on each subcommand after
// a --help run, so the shared RootCmd can be executed again in later tests.
func resetHelpFlags() {
	for _, c := range cmd.RootCmd.Commands() {
		if f := c.Flags().Lookup("help"); f != nil {
			_ = f.Value.Set("false")
			f.Changed = false
		}
	}
}

func Test_helpers_for_command(t *testing.T) {
	ttests := map[string]struct{}{
		"assume":  {},
		"status":  {},
		"roles":   {},
		"version": {},
	}
	for name := range ttests {
		t.Run(name, func(t *testing.T) {
			cmdArgs := []string{name, "--help"}
			b := new(bytes.Buffer)
			o := new(bytes.Buffer)
			cmd := cmd.RootCmd
			cmd.SetArgs(cmdArgs)
			cmd.SetErr(b)
			cmd.SetOut(o)
			cmd.Execute()
			resetHelpFlags()
			err, _ := io.ReadAll(b)
			if len(err) > 0 {
				t.Fatal("got err, wanted nil")
			}
			out, _ := io.ReadAll(o)
			if len(out) <= 0 {
				t.Fatalf("got empty, wanted a help message")
			}
		})
	}
}

func Test_Roles_lists_pairs_from_stdin(t *testing.T) {
	doc := `<Response><Assertion><AttributeStatement>
	<Attribute Name="https://aws.amazon.com/SAML/Attributes/Role">
	<AttributeValue>arn:aws:iam::111122223333:role/A,arn:aws:iam::111122223333:saml-provider/X</AttributeValue>
	</Attribute>
	</AttributeStatement></Assertion></Response>`

	b := new(bytes.Buffer)
	o := new(bytes.Buffer)
	cmd := cmd.RootCmd
	cmd.SetArgs([]string{"roles", "-f", "-"})
	cmd.SetIn(strings.NewReader(base64.StdEncoding.EncodeToString([]byte(doc))))
	cmd.SetErr(b)
	cmd.SetOut(o)
	if err := cmd.Execute(); err != nil {
		t.Fatalf("got %s, wanted <nil>", err)
	}
	out, _ := io.ReadAll(o)
	if !strings.Contains(string(out), "arn:aws:iam::111122223333:saml-provider/X,arn:aws:iam::111122223333:role/A") {
		t.Errorf("wanted principal,role pair in output, got %q", string(out))
	}
}

func Test_Status_fails_without_stored_creds(t *testing.T) {
	tempDir := t.TempDir()
	b := new(bytes.Buffer)
	o := new(bytes.Buffer)
	cmd := cmd.RootCmd
	cmd.SetArgs([]string{"status", "--cred-file", tempDir + "/credentials"})
	cmd.SetErr(b)
	cmd.SetOut(o)
	if err := cmd.Execute(); err == nil {
		t.Fatal("got <nil>, wanted non nil for missing credentials")
	}
}
