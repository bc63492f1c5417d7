// Copyright (C) 2020-2021,  0xN3utr0n

// Ktrace is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

// Ktrace is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.

// You should have received a copy of the GNU General Public License
// along with Ktrace. If not, see <http://www.gnu.org/licenses/>.

package main

import (
	"flag"
	"fmt"
	l "log"
	"os"

	"github.com/0xN3utr0n/Ktrace/config"
	"github.com/0xN3utr0n/Ktrace/database"
	"github.com/0xN3utr0n/Ktrace/ftrace"
	"github.com/0xN3utr0n/Ktrace/logger"
	"github.com/0xN3utr0n/Ktrace/sysinfo"
	"github.com/rs/zerolog"
)

const (
	workDir = "/var/ktrace"
	logPath = workDir + "/ktrace.log"
	dbPath  = workDir + "/ktrace.db"
)

func main() {
	cfg, debug, quiet := parseArgs()

	logger.SetDebug(debug)

	if err := os.MkdirAll(workDir, 0755); err != nil {
		l.Fatal(err)
	}

	log, err := logger.New(logPath, quiet == false)
	if err != nil {
		l.Fatal(err)
	}

	info, err := sysinfo.Collect()
	if err != nil {
		log.WarnS("Host snapshot failed: "+err.Error(), "Main")
	} else {
		log.Info("Main").Dict("Host", zerolog.Dict().
			Str("Name", info.Hostname).
			Str("Kernel", info.Kernel).
			Str("Arch", info.Arch).
			Int("CPUs", info.CPUs)).
			Msg("Starting capture")
	}

	id := openHistory(cfg, info, log)

	session := ftrace.NewSession(log)
	runErr := session.Run(cfg)

	closeHistory(id, runErr, session.Dumped(), log)

	if runErr != nil {
		log.FatalS(runErr, "Main")
	}

	log.InfoS("Trace saved to "+cfg.Output, "Main")
}

func usage(catalog []ftrace.Category) {
	fmt.Printf("Usage: %s [options] [category1] [category2]...\n", os.Args[0])

	fmt.Println()
	fmt.Println("Options")
	fmt.Println("  -h            Print this message.")
	fmt.Println("  -o <filename> Save the trace to <filename>.")
	fmt.Println("  -t <timeout>  Trace for <timeout> seconds.")
	fmt.Println("  -c <profile>  Read defaults and extra categories from <profile>.")
	fmt.Println("  -d            Show debug messages (very verbose).")
	fmt.Println("  -q            Do not mirror logs to stdout.")

	fmt.Println()
	fmt.Println("Available categories are:")
	for i := range catalog {
		fmt.Printf("  %s: %s\n", catalog[i].Name, catalog[i].Description)
	}

	os.Exit(1)
}

// parseArgs merges the command line flags, the optional capture
// profile and the built-in defaults into the session config. Flags
// win over the profile, the profile wins over the defaults.
func parseArgs() (ftrace.Config, bool, bool) {
	output := flag.String("o", "tmp.trace", "Save the trace to <filename>.")
	timeout := flag.Uint("t", 5, "Trace for <timeout> seconds.")
	profilePath := flag.String("c", "", "Read defaults and extra categories from <profile>.")
	debug := flag.Bool("d", false, "Show debug messages (very verbose).")
	quiet := flag.Bool("q", false, "Do not mirror logs to stdout.")

	flag.Usage = func() { usage(ftrace.Categories()) }
	flag.Parse()

	profile := new(config.Profile)
	if *profilePath != "" {
		var err error
		if profile, err = config.Load(*profilePath); err != nil {
			fmt.Println(err)
			usage(ftrace.Categories())
		}
	}

	catalog := ftrace.Merge(profile.ExtraCategories())

	names := flag.Args()
	if len(names) == 0 {
		names = profile.Categories
	}

	selected := make(map[string]bool)
	for _, name := range names {
		if ftrace.Find(catalog, name) == nil {
			fmt.Println("unknown category " + name)
			usage(catalog)
		}
		selected[name] = true
	}

	cfg := ftrace.Config{
		Output:   *output,
		Timeout:  *timeout,
		Explicit: len(selected) > 0,
	}

	// Explicit runs keep catalog order no matter how the user
	// ordered the arguments.
	for i := range catalog {
		if cfg.Explicit == false || selected[catalog[i].Name] {
			cfg.Categories = append(cfg.Categories, catalog[i])
		}
	}

	set := make(map[string]bool)
	flag.Visit(func(f *flag.Flag) { set[f.Name] = true })

	if set["o"] == false && profile.Output != "" {
		cfg.Output = profile.Output
	}
	if set["t"] == false && profile.Timeout != 0 {
		cfg.Timeout = profile.Timeout
	}

	return cfg, *debug, *quiet
}

// openHistory opens the capture ledger and registers the upcoming
// run. The ledger is convenience, not core duty: failures only cost
// the history entry.
func openHistory(cfg ftrace.Config, info *sysinfo.Info, log *logger.Logger) int64 {
	if err := database.NewDb(dbPath); err != nil {
		log.WarnS("Capture history disabled: "+err.Error(), "History")
		return 0
	}

	if err := database.CreateSessionTable(); err != nil {
		log.WarnS("Capture history disabled: "+err.Error(), "History")
		return 0
	}

	kernel := "unknown"
	if info != nil {
		kernel = info.Kernel
	}

	names := make([]string, 0, len(cfg.Categories))
	for i := range cfg.Categories {
		names = append(names, cfg.Categories[i].Name)
	}

	id, err := database.InsertSession(kernel, names, cfg.Explicit, cfg.Timeout, cfg.Output)
	if err != nil {
		log.WarnS("Capture history disabled: "+err.Error(), "History")
		return 0
	}

	return id
}

// closeHistory records the outcome of the run and closes the ledger.
func closeHistory(id int64, runErr error, bytes int, log *logger.Logger) {
	if id != 0 {
		outcome := "ok"
		if runErr != nil {
			outcome = runErr.Error()
		}

		if err := database.FinishSession(id, outcome, bytes); err != nil {
			log.WarnS("Capture history update failed: "+err.Error(), "History")
		}
	}

	database.Close()
}
