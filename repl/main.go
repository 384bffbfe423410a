// Interactive playground: a relay of named replicas, each holding a
// replicated map. Mutate one replica, commit, sync the others, watch
// the deltas converge.
package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/dotdelta/repdata"
	"github.com/dotdelta/repdata/codec"
	"github.com/ergochat/readline"
)

type REPL struct {
	relay   *repdata.Relay
	factory repdata.Factory

	reps map[string]*replica
	cur  string

	rl *readline.Instance
}

type replica struct {
	member *repdata.Replica
	src    uint64
}

var completer = readline.NewPrefixCompleter(
	readline.PcItem("help"),

	readline.PcItem("spawn"),
	readline.PcItem("use"),

	readline.PcItem("inc"),
	readline.PcItem("dec"),
	readline.PcItem("put"),
	readline.PcItem("del"),
	readline.PcItem("clear"),
	readline.PcItem("ls"),

	readline.PcItem("commit"),
	readline.PcItem("sync"),
	readline.PcItem("stat"),

	readline.PcItem("exit"),
	readline.PcItem("quit"),
)

func filterInput(r rune) (rune, bool) {
	switch r {
	// block CtrlZ feature
	case readline.CharCtrlZ:
		return r, false
	}
	return r, true
}

func (repl *REPL) Open() (err error) {
	repl.rl, err = readline.NewEx(&readline.Config{
		Prompt:          "∆ ",
		HistoryFile:     ".repdata_cmd_log.txt",
		AutoComplete:    completer,
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",

		HistorySearchFold:   true,
		FuncFilterInputRune: filterInput,
	})
	if err != nil {
		return
	}
	repl.rl.CaptureExitSignal()
	return
}

func (repl *REPL) Close() error {
	if repl.rl != nil {
		_ = repl.rl.Close()
		repl.rl = nil
	}
	return nil
}

func (repl *REPL) REPL() (err error) {
	var line string
	line, err = repl.rl.Readline()
	if err == readline.ErrInterrupt && len(line) != 0 {
		return nil
	}
	if err != nil {
		return err
	}

	line = strings.TrimSpace(line)
	if len(line) == 0 {
		return nil
	}
	cmd, args := line, []string(nil)
	if ws := strings.IndexAny(line, " \t"); ws > 0 {
		cmd = line[:ws]
		args = strings.Fields(line[ws:])
	}

	switch cmd {
	case "help":
		fmt.Println("spawn use inc dec put del clear ls commit sync stat exit")
	case "spawn":
		err = repl.CommandSpawn(args)
	case "use":
		err = repl.CommandUse(args)
	case "inc":
		err = repl.CommandInc(args, +1)
	case "dec":
		err = repl.CommandInc(args, -1)
	case "put":
		err = repl.CommandPut(args)
	case "del":
		err = repl.CommandDel(args)
	case "clear":
		err = repl.CommandClear(args)
	case "ls", "show", "list":
		err = repl.CommandList(args)
	case "commit":
		err = repl.CommandCommit(args)
	case "sync":
		err = repl.CommandSync(args)
	case "stat":
		err = repl.CommandStat(args)
	case "exit", "quit":
		err = io.EOF
	default:
		fmt.Printf("unknown command %q, try help\n", cmd)
	}
	return
}

func main() {
	keys := codec.Identity{}
	repl := REPL{
		relay:   repdata.NewRelay(repdata.RelayOptions{}),
		factory: repdata.MakeFactory(keys),
		reps:    make(map[string]*replica),
	}
	if err := repl.Open(); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}
	defer repl.Close()

	fmt.Println("delta playground; spawn a couple of replicas and go")
	for {
		err := repl.REPL()
		if err == io.EOF || err == readline.ErrInterrupt {
			break
		}
		if err != nil {
			fmt.Println(err.Error())
		}
	}
}
