package main

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/dotdelta/repdata"
)

var HelpSpawn = errors.New("spawn <name>")
var HelpUse = errors.New("use <name>")
var HelpInc = errors.New("inc <key> [n]")
var HelpPut = errors.New("put <key> <value>")
var HelpDel = errors.New("del <key>")

func (repl *REPL) current() (*replica, error) {
	if repl.cur == "" {
		return nil, errors.New("no replica selected, spawn one")
	}
	return repl.reps[repl.cur], nil
}

func (repl *REPL) state() (*repdata.Map, error) {
	rep, err := repl.current()
	if err != nil {
		return nil, err
	}
	return rep.member.Data().(*repdata.Map), nil
}

func (repl *REPL) CommandSpawn(args []string) error {
	if len(args) != 1 {
		return HelpSpawn
	}
	name := args[0]
	if _, taken := repl.reps[name]; taken {
		return fmt.Errorf("replica %q already exists", name)
	}
	state, err := repl.factory(repdata.KindMap)
	if err != nil {
		return err
	}
	repl.reps[name] = &replica{
		member: repl.relay.Join(state),
		src:    uint64(len(repl.reps) + 1),
	}
	repl.cur = name
	fmt.Printf("replica %q spawned and selected\n", name)
	return nil
}

func (repl *REPL) CommandUse(args []string) error {
	if len(args) != 1 {
		return HelpUse
	}
	if _, ok := repl.reps[args[0]]; !ok {
		return fmt.Errorf("no replica %q", args[0])
	}
	repl.cur = args[0]
	fmt.Printf("using %q\n", repl.cur)
	return nil
}

func (repl *REPL) CommandInc(args []string, sign int64) error {
	if len(args) < 1 || len(args) > 2 {
		return HelpInc
	}
	n := int64(1)
	if len(args) == 2 {
		var err error
		if n, err = strconv.ParseInt(args[1], 10, 64); err != nil {
			return HelpInc
		}
	}
	state, err := repl.state()
	if err != nil {
		return err
	}
	c, err := state.Counter(args[0])
	if err != nil {
		return err
	}
	c.Increment(sign * n)
	fmt.Printf("%s = %d\n", args[0], c.Value())
	return nil
}

func (repl *REPL) CommandPut(args []string) error {
	if len(args) != 2 {
		return HelpPut
	}
	rep, err := repl.current()
	if err != nil {
		return err
	}
	state, _ := repl.state()
	v, err := state.Get(args[0])
	if err != nil {
		return err
	}
	reg, ok := v.(*repdata.Register)
	if v != nil && !ok {
		return fmt.Errorf("%s is not a register", args[0])
	}
	if reg == nil {
		reg = repdata.NewRegister(rep.src)
		if err = state.Set(args[0], reg); err != nil {
			return err
		}
	}
	reg.Set([]byte(args[1]))
	return nil
}

func (repl *REPL) CommandDel(args []string) error {
	if len(args) != 1 {
		return HelpDel
	}
	state, err := repl.state()
	if err != nil {
		return err
	}
	return state.Delete(args[0])
}

func (repl *REPL) CommandClear(args []string) error {
	state, err := repl.state()
	if err != nil {
		return err
	}
	state.Clear()
	return nil
}

func (repl *REPL) CommandList(args []string) error {
	state, err := repl.state()
	if err != nil {
		return err
	}
	keys, err := state.Keys()
	if err != nil {
		return err
	}
	for _, key := range keys {
		v, _ := state.Get(key)
		fmt.Printf("%v\t%s\n", key, render(v))
	}
	fmt.Printf("(%d entries @ %s)\n", state.Len(), repl.cur)
	return nil
}

func render(v repdata.RDT) string {
	switch data := v.(type) {
	case *repdata.Counter:
		return fmt.Sprintf("%d", data.Value())
	case *repdata.Register:
		return fmt.Sprintf("%q", data.Value())
	case *repdata.Set:
		return fmt.Sprintf("set of %d", data.Len())
	case *repdata.Map:
		return fmt.Sprintf("map of %d", data.Len())
	default:
		return "?"
	}
}

func (repl *REPL) CommandCommit(args []string) error {
	rep, err := repl.current()
	if err != nil {
		return err
	}
	return rep.member.Commit(false)
}

func (repl *REPL) CommandSync(args []string) error {
	for name, rep := range repl.reps {
		n, err := rep.member.Sync()
		if err != nil {
			return err
		}
		if n > 0 {
			fmt.Printf("%s: %d deltas applied\n", name, n)
		}
	}
	return nil
}

func (repl *REPL) CommandStat(args []string) error {
	stats := repl.relay.Stats()
	fmt.Printf("replicas %d, extracted %d, applied %d, wire bytes %d\n",
		stats.Replicas.Load(), stats.Extracted.Load(),
		stats.Applied.Load(), stats.WireBytes.Load())
	return nil
}
