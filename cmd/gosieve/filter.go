/*
 * filter.go, part of gosieve
 *
 * Copyright 2026 Raul Mera <rmera{at}chemDOThelsinkiDOTfi>
 *
    This program is free software: you can redistribute it and/or modify
    it under the terms of the GNU Lesser General Public License as published by
    the Free Software Foundation, either version 2.1 of the License, or
    (at your option) any later version.

    This program is distributed in the hope that it will be useful,
    but WITHOUT ANY WARRANTY; without even the implied warranty of
    MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
    GNU General Public License for more details.

    You should have received a copy of the GNU Lesser General Public License
    along with this program.  If not, see <http://www.gnu.org/licenses/>.
 *
 *
*/

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	sieve "github.com/rmera/gosieve"
	"github.com/rmera/gosieve/config"
	"github.com/rmera/gosieve/db"
	"github.com/rmera/gosieve/histo"
	"github.com/rmera/gosieve/sieveplot"
)

var filterConfig string

var filterCmd = &cobra.Command{
	Use:   "filter",
	Short: "Keep the structures that fulfill every criteria",
	Long: `Read the trajectory given in the configuration file, evaluate every criteria
on each frame, and write the frames accepted by all of them. Optionally, every frame
is stored in a SQLite database, and the distribution of each descriptor is plotted.`,
	Args: cobra.NoArgs,
	RunE: runFilter,
}

func init() {
	filterCmd.Flags().StringVarP(&filterConfig, "config", "c", "gosieve.toml", "Configuration file")
	rootCmd.AddCommand(filterCmd)
}

func runFilter(cmd *cobra.Command, _ []string) (err error) {
	ctx := cmd.Context()
	log := logger(cmd)
	c, err := config.Load(filterConfig)
	if err != nil {
		return err
	}
	crits, err := c.Build()
	if err != nil {
		return err
	}
	o, err := c.Options()
	if err != nil {
		return err
	}
	traj, Z, err := openTraj(c.Input, c.AtomicNumbers)
	if err != nil {
		return err
	}
	defer traj.Close()
	for i, cr := range c.Criteria {
		if len(cr.EntityIDs) > 0 && len(cr.EntityIDs) != len(Z) {
			return fmt.Errorf("criteria %d: %d entity_ids for %d atoms in %s", i, len(cr.EntityIDs), len(Z), c.Input)
		}
	}

	f := sieve.NewFilter(Z, crits...)
	f.Batch = c.Batch
	f.Center = c.Center
	f.Options = o
	f.Log = log

	var out trajWriter
	if c.Output != "" {
		if out, err = createTraj(c.Output, Z, c.Precision); err != nil {
			return err
		}
		defer func() {
			if cerr := out.Close(); cerr != nil && err == nil {
				err = cerr
			}
		}()
	}

	names := criteriaNames(crits)
	var store *db.Store
	var run *db.Run
	if c.Database != "" {
		if store, err = db.Open(c.Database); err != nil {
			return err
		}
		defer store.Close()
		enc, err := c.Encode()
		if err != nil {
			return err
		}
		if run, err = store.NewRun(ctx, names, enc); err != nil {
			return err
		}
		log.Info("storing structures", "database", c.Database, "run", run.ID)
	}

	values := make([][]float64, len(crits))
	onFrame := func(r sieve.FrameResult) error {
		for i, v := range r.Values {
			values[i] = append(values[i], v)
		}
		if store == nil {
			return nil
		}
		return store.WriteStructure(ctx, run.ID, record(Z, names, r))
	}
	var w sieve.TrajWriter
	if out != nil {
		w = out
	}
	st, err := f.Run(ctx, traj, w, onFrame)
	if err != nil {
		return err
	}

	cmd.Printf("%d structures read, %d accepted\n", st.Read, st.Accepted)
	for i, C := range crits {
		cmd.Printf("%-24s cutoff=%-8.4g %s\n", names[i], C.Cutoff(), histo.Summarize(values[i]))
	}
	if c.Plot == "" || st.Read == 0 {
		return nil
	}
	for i, C := range crits {
		name := fmt.Sprintf("%s_%s.png", c.Plot, names[i])
		title := fmt.Sprintf("%s (%d of %d accepted)", names[i], countBelow(values[i], C.Cutoff()), st.Read)
		if err := sieveplot.Histogram(values[i], C.Cutoff(), c.Bins, title, names[i], name); err != nil {
			return fmt.Errorf("plotting %s: %w", names[i], err)
		}
		log.V(1).Info("plot written", "file", name)
	}
	cutoffs := make([]float64, len(crits))
	for i, C := range crits {
		cutoffs[i] = C.Cutoff()
	}
	if err := sieveplot.Trace(values, cutoffs, names, c.Input, c.Plot+"_trace.png"); err != nil {
		return fmt.Errorf("plotting trace: %w", err)
	}
	return nil
}

// criteriaNames returns a name for each criteria: the name of its descriptor,
// with an index appended when the same descriptor is used more than once.
func criteriaNames(crits []*sieve.Criteria) []string {
	count := make(map[string]int)
	for _, C := range crits {
		count[C.Descriptor().Name()]++
	}
	names := make([]string, len(crits))
	seen := make(map[string]int)
	for i, C := range crits {
		n := C.Descriptor().Name()
		names[i] = n
		if count[n] > 1 {
			names[i] = fmt.Sprintf("%s_%d", n, seen[n])
			seen[n]++
		}
	}
	return names
}

func record(Z []int, names []string, r sieve.FrameResult) db.Record {
	rec := db.Record{
		Frame:       r.Index,
		Numbers:     Z,
		Positions:   make([]float64, 0, 3*len(Z)),
		Accepted:    r.Accepted,
		Descriptors: make(map[string]float64, len(names)),
	}
	for i := 0; i < r.Coords.NVecs(); i++ {
		rec.Positions = append(rec.Positions, r.Coords.Vec(i)...)
	}
	for i, v := range r.Values {
		rec.Descriptors[names[i]] = v
	}
	return rec
}

func countBelow(values []float64, cutoff float64) int {
	n := 0
	for _, v := range values {
		if v < cutoff {
			n++
		}
	}
	return n
}
