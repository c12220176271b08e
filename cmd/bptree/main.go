// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: BUSL-1.1

// Command bptree inspects the structure the library builds for a given
// input: it loads newline-separated keys into a map and prints either
// structural statistics or the node layout.
package main

import (
	"bufio"
	"fmt"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	bptree "github.com/absolutelightning/go-immutable-bptree"
)

var order int

func loadMap(path string) (*bptree.Map[string, int], error) {
	f := os.Stdin
	if path != "" {
		var err error
		f, err = os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
	}
	txn := bptree.New[string, int](bptree.Order(order)).Txn()
	line := 0
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line++
		txn.Set(scanner.Text(), line)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return txn.Commit(), nil
}

func statsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "stats [file]",
		Short: "Print structural statistics for the loaded tree",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := ""
			if len(args) == 1 {
				path = args[0]
			}
			m, err := loadMap(path)
			if err != nil {
				return err
			}
			st := m.Stats()
			fmt.Printf("keys:      %s\n", humanize.Comma(int64(st.Size)))
			fmt.Printf("order:     %d\n", st.Order)
			fmt.Printf("height:    %d\n", st.Height)
			fmt.Printf("leaves:    %s\n", humanize.Comma(int64(st.Leaves)))
			fmt.Printf("inners:    %s\n", humanize.Comma(int64(st.Inners)))
			fmt.Printf("leaf fill: %.1f%%\n", st.LeafFill*100)
			return nil
		},
	}
}

func dumpCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "dump [file]",
		Short: "Print the node layout of the loaded tree",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := ""
			if len(args) == 1 {
				path = args[0]
			}
			m, err := loadMap(path)
			if err != nil {
				return err
			}
			fmt.Print(m.Dump())
			return nil
		},
	}
}

func main() {
	root := &cobra.Command{
		Use:   "bptree",
		Short: "Inspect immutable B+ trees built from line-oriented input",
	}
	root.PersistentFlags().IntVar(&order, "order", 32, "tree order (fan-out)")
	root.AddCommand(statsCommand())
	root.AddCommand(dumpCommand())

	if err := root.Execute(); err != nil {
		fmt.Printf("Error: %s\n", err.Error())
		os.Exit(1)
	}
}
