/*
 * describe.go, part of gosieve
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
	"errors"
	"fmt"
	"math"

	"github.com/spf13/cobra"

	sieve "github.com/rmera/gosieve"
	v3 "github.com/rmera/gosieve/v3"
)

const centerOfMassName = "center_of_mass"

var (
	describeDescriptor    string
	describeEntityIDs     []int
	describeAtomicNumbers []int
)

var describeCmd = &cobra.Command{
	Use:   "describe <trajectory>",
	Short: "Print a descriptor for every frame of a trajectory",
	Long: `Print the value of a descriptor for every frame of an XYZ, stf or DCD trajectory,
one frame per line. DCD files need the atomic numbers. Besides the descriptors that
can be used as criteria, center_of_mass prints the center of mass of each frame.`,
	Args: cobra.ExactArgs(1),
	RunE: runDescribe,
}

func init() {
	describeCmd.Flags().StringVarP(&describeDescriptor, "descriptor", "d", sieve.MaxAtomPairDistName, "Descriptor to compute")
	describeCmd.Flags().IntSliceVarP(&describeEntityIDs, "entity-ids", "e", nil, "Entity of each atom, for com_distance_sum")
	describeCmd.Flags().IntSliceVarP(&describeAtomicNumbers, "atomic-numbers", "z", nil, "Atomic numbers, for trajectories that don't store them")
	rootCmd.AddCommand(describeCmd)
}

func runDescribe(cmd *cobra.Command, args []string) error {
	traj, Z, err := openTraj(args[0], describeAtomicNumbers)
	if err != nil {
		return err
	}
	defer traj.Close()

	var C *sieve.Criteria
	if describeDescriptor != centerOfMassName {
		d, err := sieve.DescriptorByName(describeDescriptor)
		if err != nil {
			return err
		}
		var fixed sieve.Args
		if len(describeEntityIDs) > 0 {
			fixed = sieve.Args{sieve.EntityIDsArg: describeEntityIDs}
		}
		if C, err = sieve.NewCriteria(d, fixed, math.Inf(1)); err != nil {
			return err
		}
	}

	frame := v3.Zeros(len(Z))
	for i := 0; ; i++ {
		if err := cmd.Context().Err(); err != nil {
			return err
		}
		err := traj.Next(frame)
		if err != nil {
			var last sieve.LastFrameError
			if errors.As(err, &last) {
				return nil
			}
			return err
		}
		if C == nil {
			com, err := sieve.CenterOfMass(Z, sieve.Frame(frame))
			if err != nil {
				return err
			}
			c := com.Vec(0)
			cmd.Printf("%d %.6f %.6f %.6f\n", i, c[0], c[1], c[2])
			continue
		}
		_, v, err := C.AcceptFrame(Z, frame, nil)
		if err != nil {
			return fmt.Errorf("frame %d: %w", i, err)
		}
		cmd.Printf("%d %.6f\n", i, v)
	}
}
