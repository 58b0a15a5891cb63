package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/iov-one/jobchain"
	jobchaind "github.com/iov-one/jobchain/cmd/jobchaind/app"
	"github.com/iov-one/jobchain/commands/server"
	"github.com/tendermint/tendermint/libs/log"
)

var (
	flagHome = "home"
	varHome  *string
)

func init() {
	defaultHome := filepath.Join(os.ExpandEnv("$HOME"), ".jobchain")
	varHome = flag.String(flagHome, defaultHome, "directory to store files under")

	flag.CommandLine.Usage = helpMessage
}

func helpMessage() {
	fmt.Println("jobchaind")
	fmt.Println("          Escrow backed job payments node")
	fmt.Println("")
	fmt.Println("help      Print this message")
	fmt.Println("init      Initialize app options in genesis file")
	fmt.Println("start     Run the abci server")
	fmt.Println("validate  Check the app_state of genesis files")
	fmt.Println("getblock  Extract a block from blockstore.db")
	fmt.Println("replay    Deliver the last block again and compare app hashes")
	fmt.Println("version   Print the app version")
	fmt.Println(`
  -home string
        directory to store files under (default "$HOME/.jobchain")`)
}

func main() {
	logger := log.NewTMLogger(log.NewSyncWriter(os.Stdout)).
		With("module", "jobchain")

	flag.Parse()
	if flag.NArg() == 0 {
		fmt.Println("Missing command:")
		helpMessage()
		os.Exit(1)
	}

	cmd := flag.Arg(0)
	rest := flag.Args()[1:]

	var err error
	switch cmd {
	case "help":
		helpMessage()
	case "init":
		err = server.InitCmd(jobchaind.GenInitOptions, logger, *varHome, rest)
	case "start":
		err = server.StartCmd(jobchaind.GenerateApp, logger, *varHome, rest)
	case "validate":
		err = server.ValidateGenesis(jobchaind.Initializers(), rest)
	case "getblock":
		err = server.GetBlockCmd(rest)
	case "replay":
		err = server.ReplayCmd(jobchaind.InlineApp, logger, rest)
	case "version":
		fmt.Println(jobchain.Version())
	default:
		err = fmt.Errorf("unknown command: %s", cmd)
	}

	if err != nil {
		fmt.Printf("Error: %+v\n\n", err)
		helpMessage()
		os.Exit(1)
	}
}
