// Command tzdump prints the contents of compiled zone files in a readable
// form, similar to zdump(8) but driven by the file contents instead of the
// C library.
package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/tzkit/zoneinfo/tz"
	"github.com/tzkit/zoneinfo/tzdb"
	"github.com/tzkit/zoneinfo/tzif"
)

var (
	dirsFlag   []string
	limitsFlag bool
	leapsFlag  bool
	typesFlag  bool
)

var rootCmd = &cobra.Command{
	Use:   "tzdump [flags] zone...",
	Short: "Print transitions of compiled zone files",
	Long: `tzdump decodes compiled zone files and prints their transitions.

Arguments naming an existing file are read directly; anything else is
looked up as a zone name in the system time zone database, for example
"Europe/Berlin".`,
	Args:          cobra.MinimumNArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		db := &tzdb.DB{Dirs: dirsFlag}
		if limitsFlag {
			db.Limits = tzif.SensibleLimits()
		}

		failed := false
		for _, arg := range args {
			z, err := loadArg(db, arg)
			if err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "tzdump: %v\n", err)
				failed = true
				continue
			}
			dumpZone(cmd, arg, z)
		}
		if failed {
			return fmt.Errorf("some zones could not be dumped")
		}
		return nil
	},
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List the zones available in the database",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		db := &tzdb.DB{Dirs: dirsFlag}
		names, err := db.Zones()
		if err != nil {
			return err
		}
		for _, name := range names {
			fmt.Fprintln(cmd.OutOrStdout(), name)
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringSliceVar(&dirsFlag, "dir", nil, "search the given directories or zip archives instead of the default locations")
	rootCmd.Flags().BoolVar(&limitsFlag, "limits", false, "reject files with implausibly large headers")
	rootCmd.Flags().BoolVar(&leapsFlag, "leaps", false, "print the leap second table")
	rootCmd.Flags().BoolVar(&typesFlag, "types", false, "print the local time type table")
	rootCmd.AddCommand(listCmd)
}

func loadArg(db *tzdb.DB, arg string) (*tz.Zone, error) {
	if _, err := os.Stat(arg); err == nil {
		return tzdb.LoadFile(arg)
	}
	return db.LoadZone(arg)
}

func dumpZone(cmd *cobra.Command, name string, z *tz.Zone) {
	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "%s  %d types, %d transitions, %d leap seconds\n",
		name, len(z.Types), len(z.Transitions), len(z.LeapSeconds))

	if typesFlag {
		for _, lt := range z.Types {
			fmt.Fprintf(w, "  type %-8s %s dst=%-5v %s\n", lt.Name, offset(lt.Offset), lt.DST, lt.Indicator)
		}
	}

	for _, tr := range z.Transitions {
		lt := tr.Type
		fmt.Fprintf(w, "  %s  %-8s %s dst=%v\n",
			time.Unix(tr.At, 0).UTC().Format(time.RFC3339), lt.Name, offset(lt.Offset), lt.DST)
	}

	if leapsFlag {
		for _, l := range z.LeapSeconds {
			fmt.Fprintf(w, "  leap %s corr=%+d\n", time.Unix(l.Occur, 0).UTC().Format(time.RFC3339), l.Corr)
		}
	}

	if z.Rule != nil {
		r := z.Rule
		if r.DST {
			fmt.Fprintf(w, "  rule %s %s / %s %s\n", r.StdName, offset(r.StdOffset), r.DSTName, offset(r.DSTOffset))
		} else {
			fmt.Fprintf(w, "  rule %s %s\n", r.StdName, offset(r.StdOffset))
		}
	}
}

// offset formats seconds east of UT in the +hh:mm:ss form.
func offset(secs int) string {
	var b strings.Builder
	if secs < 0 {
		b.WriteByte('-')
		secs = -secs
	} else {
		b.WriteByte('+')
	}
	fmt.Fprintf(&b, "%02d:%02d:%02d", secs/3600, secs/60%60, secs%60)
	return b.String()
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "tzdump:", err)
		os.Exit(1)
	}
}
