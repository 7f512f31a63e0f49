// Command circsim drives the gate-level circuit simulator from the
// command line: load a netlist, poke wires and registers, run the
// engine to a fixed point, and dump the resulting state. Grounded on
// the teacher's cmd/z80opt/main.go: a cobra root command, one
// sub-command per verb, plain fmt.Printf progress output, flags bound
// directly to local variables.
package main

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/oisee/circsim/pkg/circerr"
	"github.com/oisee/circsim/pkg/circuit"
	"github.com/oisee/circsim/pkg/netlist"
	"github.com/oisee/circsim/pkg/register"
	"github.com/oisee/circsim/pkg/sim"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "circsim:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var logLevel string
	var budget int

	root := &cobra.Command{
		Use:   "circsim",
		Short: "Gate-level transistor circuit simulator",
	}
	root.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "Log level: debug, info, warn, error")
	root.PersistentFlags().IntVar(&budget, "budget", sim.DefaultBudget, "Iteration budget before giving up")

	newEngine := func(path string) (*sim.Simulator, *circuit.Store, []*register.Register, error) {
		log := logrus.New()
		level, err := logrus.ParseLevel(logLevel)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("invalid --log-level %q: %w", logLevel, err)
		}
		log.SetLevel(level)

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, nil, nil, err
		}
		store, regs, err := netlist.Load(data)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("netlist: %w", err)
		}
		log.WithFields(logrus.Fields{
			"wires":       store.WireCount(),
			"transistors": store.TransistorCount(),
			"registers":   len(regs),
		}).Info("circsim: netlist loaded")
		return sim.New(store, budget, log), store, regs, nil
	}

	root.AddCommand(newLoadCmd(newEngine))
	root.AddCommand(newRunCmd(newEngine))
	root.AddCommand(newStepCmd(newEngine))
	root.AddCommand(newDumpCmd(newEngine))
	root.AddCommand(newRegisterCmd(newEngine))
	return root
}

type engineFactory func(path string) (*sim.Simulator, *circuit.Store, []*register.Register, error)

func newLoadCmd(newEngine engineFactory) *cobra.Command {
	return &cobra.Command{
		Use:   "load [netlist.json]",
		Short: "Parse a netlist and print a summary",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, store, regs, err := newEngine(args[0])
			if err != nil {
				return err
			}
			fmt.Printf("Wires:       %d\n", store.WireCount())
			fmt.Printf("Transistors: %d\n", store.TransistorCount())
			fmt.Printf("Registers:   %d\n", len(regs))
			if vcc, ok := store.VCCID(); ok {
				fmt.Printf("VCC:         wire %d\n", vcc)
			}
			if gnd, ok := store.GNDID(); ok {
				fmt.Printf("GND:         wire %d\n", gnd)
			}
			return nil
		},
	}
}

// parseSet parses a single "name=LEVEL" --set argument, where LEVEL is
// HIGH or LOW (the hard write path exposed by SetWireByName).
func parseSet(spec string) (name string, high bool, err error) {
	parts := strings.SplitN(spec, "=", 2)
	if len(parts) != 2 {
		return "", false, fmt.Errorf("--set %q: expected name=HIGH|LOW", spec)
	}
	switch strings.ToUpper(parts[1]) {
	case "HIGH", "H", "1":
		return parts[0], true, nil
	case "LOW", "L", "0":
		return parts[0], false, nil
	default:
		return "", false, fmt.Errorf("--set %q: level must be HIGH or LOW", spec)
	}
}

func newRunCmd(newEngine engineFactory) *cobra.Command {
	var sets []string
	cmd := &cobra.Command{
		Use:   "run [netlist.json]",
		Short: "Load a netlist, apply stimulus, run to convergence, dump wires",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			engine, store, _, err := newEngine(args[0])
			if err != nil {
				return err
			}
			for _, s := range sets {
				name, high, err := parseSet(s)
				if err != nil {
					return err
				}
				if err := engine.SetWireByName(name, high); err != nil {
					return err
				}
			}
			if err := engine.RunToConvergence(); err != nil {
				if errors.Is(err, circerr.IterationLimitExceeded) {
					fmt.Printf("did not converge within %d iterations\n", engine.IterationCount())
				}
				return err
			}
			fmt.Printf("converged in %d iterations\n\n", engine.IterationCount())
			dumpWires(store)
			return nil
		},
	}
	cmd.Flags().StringArrayVar(&sets, "set", nil, "Wire stimulus as name=HIGH|LOW (repeatable)")
	return cmd
}

func newStepCmd(newEngine engineFactory) *cobra.Command {
	return &cobra.Command{
		Use:   "step [netlist.json]",
		Short: "Load a netlist and single-step the FIFO, printing progress",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			engine, _, _, err := newEngine(args[0])
			if err != nil {
				return err
			}
			engine.MarkAllUpdated()
			steps := 0
			for {
				more, err := engine.Step()
				if err != nil {
					return err
				}
				steps++
				fmt.Printf("step %d: %d wires pending\n", steps, engine.Pending())
				if !more {
					break
				}
			}
			return nil
		},
	}
}

func newDumpCmd(newEngine engineFactory) *cobra.Command {
	return &cobra.Command{
		Use:   "dump [netlist.json]",
		Short: "Load, converge, and print every wire's resolved state",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			engine, store, _, err := newEngine(args[0])
			if err != nil {
				return err
			}
			engine.MarkAllUpdated()
			if err := engine.RunToConvergence(); err != nil {
				return err
			}
			dumpWires(store)
			return nil
		},
	}
}

func dumpWires(store *circuit.Store) {
	ids := store.AllWireIDs()
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	for _, id := range ids {
		w, _ := store.GetWire(id)
		fmt.Print(w.String())
	}
}

func newRegisterCmd(newEngine engineFactory) *cobra.Command {
	var writeValue string
	var signed bool

	cmd := &cobra.Command{
		Use:   "register [netlist.json] [register-name]",
		Short: "Read or write a named register through the engine",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			regName := args[1]

			engine, _, regs, err := newEngine(args[0])
			if err != nil {
				return err
			}
			var reg *register.Register
			for _, r := range regs {
				if r.Name() == regName {
					reg = r
					break
				}
			}
			if reg == nil {
				return circerr.Newf(circerr.KindNotFound, "register %q not found in netlist", regName)
			}

			if writeValue != "" {
				if signed {
					v, err := strconv.ParseInt(writeValue, 0, 64)
					if err != nil {
						return fmt.Errorf("--write %q: %w", writeValue, err)
					}
					if err := engine.SetRegisterSigned(reg, v); err != nil {
						return err
					}
				} else {
					v, err := strconv.ParseUint(writeValue, 0, 64)
					if err != nil {
						return fmt.Errorf("--write %q: %w", writeValue, err)
					}
					if err := engine.SetRegisterUnsigned(reg, v); err != nil {
						return err
					}
				}
				if err := engine.RunToConvergence(); err != nil {
					return err
				}
			}

			if signed {
				v, err := reg.ReadSigned()
				if err != nil {
					return err
				}
				fmt.Printf("%s = %d (signed, %d bits)\n", reg.Name(), v, reg.Width())
			} else {
				v, err := reg.ReadUnsigned()
				if err != nil {
					return err
				}
				fmt.Printf("%s = %d (unsigned, %d bits)\n", reg.Name(), v, reg.Width())
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&writeValue, "write", "", "Value to write before reading back")
	cmd.Flags().BoolVar(&signed, "signed", false, "Interpret/write the register as two's complement")
	return cmd
}
