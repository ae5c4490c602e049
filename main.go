package main

import (
	"github.com/dnitsch/aws-saml-creds/cmd"
)

func main() {
	cmd.Execute()
}
