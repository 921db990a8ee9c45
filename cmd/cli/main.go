package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/minaorangina/rails/game"
	"github.com/minaorangina/rails/protocol"
	"github.com/minaorangina/rails/round"
)

var rootCmd = &cobra.Command{
	Use:   "rails",
	Short: "A stock-and-operate railway game engine",
}

var demoCmd = &cobra.Command{
	Use:   "demo",
	Short: "Play a scripted opening and print the game report",
	RunE:  runDemo,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("rails", version)
	},
}

// set via -ldflags at build time
var version = "dev"

func init() {
	rootCmd.AddCommand(demoCmd, versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

type colorReporter struct {
	line *color.Color
}

func (r colorReporter) Report(line string) {
	r.line.Println(line)
}

func runDemo(cmd *cobra.Command, args []string) error {
	cfg := game.SampleConfig()
	cfg.Reporter = colorReporter{line: color.New(color.FgCyan)}

	ctx, err := game.NewContext(cfg)
	if err != nil {
		return err
	}
	mgr := round.NewManager(ctx)
	mgr.StartGame()

	script := []protocol.Action{
		{Player: "alice", Command: protocol.BuyItem, Item: "SVR"},
		{Player: "bola", Command: protocol.BuyItem, Item: "CSL"},
		{Player: "carol", Command: protocol.BuyItem, Item: "BO-President", Par: 100},

		{Player: "dev", Command: protocol.StartCompany, Company: "PRR", Par: 67},
		{Player: "alice", Command: protocol.BuyShare, Company: "PRR", Source: "ipo"},
		{Player: "bola", Command: protocol.BuyShare, Company: "PRR", Source: "ipo"},
		{Player: "carol", Command: protocol.BuyShare, Company: "PRR", Source: "ipo"},
		{Player: "dev", Command: protocol.BuyShare, Company: "PRR", Source: "ipo"},
		{Player: "alice", Command: protocol.Pass},
		{Player: "bola", Command: protocol.Pass},
		{Player: "carol", Command: protocol.Pass},
		{Player: "dev", Command: protocol.Pass},
	}

	bad := color.New(color.FgRed)
	for _, a := range script {
		if !mgr.Submit(a) {
			bad.Printf("action %s by %s was rejected\n", a.Command, a.Player)
		}
	}

	prompt := mgr.Prompt()
	bold := color.New(color.Bold)
	bold.Printf("\n%s, step %s: %s to act\n", prompt.Round, prompt.Step, prompt.CurrentPlayer)
	fmt.Printf("legal commands: %v\n", prompt.LegalCommands)
	return nil
}
