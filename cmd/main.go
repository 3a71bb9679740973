// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"

	dnpe "github.com/saferwall/dnpe"
	"github.com/spf13/cobra"
)

var (
	all       bool
	verbose   bool
	dosHeader bool
	ntHeader  bool
	sections  bool
	clr       bool
	tables    bool
	strings   bool
	methods   bool
)

func prettyPrint(buff []byte) string {
	var prettyJSON bytes.Buffer
	if err := json.Indent(&prettyJSON, buff, "", "\t"); err != nil {
		log.Println("JSON parse error: ", err)
		return string(buff)
	}
	return prettyJSON.String()
}

func isDirectory(path string) bool {
	fileInfo, err := os.Stat(path)
	if err != nil {
		return false
	}
	return fileInfo.IsDir()
}

func dumpOne(filename string, cmd *cobra.Command) {
	if verbose {
		log.Printf("processing filename %s", filename)
	}

	f, err := dnpe.New(filename, &dnpe.Options{})
	if err != nil {
		log.Printf("error while opening file: %s, reason: %s", filename, err)
		return
	}
	defer f.Close()

	if err := f.Parse(); err != nil {
		log.Printf("error while parsing file: %s, reason: %s", filename, err)
		return
	}

	if !f.HasCLR {
		log.Printf("%s does not carry CLR metadata", filename)
		return
	}

	wantDosHeader, _ := cmd.Flags().GetBool("dosheader")
	if wantDosHeader || all {
		b, _ := json.Marshal(f.DOSHeader)
		fmt.Println(prettyPrint(b))
	}

	wantNtHeader, _ := cmd.Flags().GetBool("ntheader")
	if wantNtHeader || all {
		b, _ := json.Marshal(f.NtHeader)
		fmt.Println(prettyPrint(b))
	}

	wantSections, _ := cmd.Flags().GetBool("sections")
	if wantSections || all {
		b, _ := json.Marshal(f.Sections)
		fmt.Println(prettyPrint(b))
	}

	wantCLR, _ := cmd.Flags().GetBool("clr")
	if wantCLR || all {
		b, _ := json.Marshal(f.CLR.Header)
		fmt.Println(prettyPrint(b))
	}

	wantTables, _ := cmd.Flags().GetBool("tables")
	if wantTables || all {
		b, _ := json.Marshal(f.CLR.MetaData.Tables)
		fmt.Println(prettyPrint(b))
	}

	wantStrings, _ := cmd.Flags().GetBool("strings")
	if wantStrings || all {
		if rows, ok := f.CLR.MetaData.Tables[dnpe.Module].Content.([]dnpe.ModuleTableRow); ok && len(rows) > 0 {
			name, _ := f.GetStringFromData(rows[0].Name, f.CLR.MetaData.Streams["#Strings"])
			fmt.Printf("module: %s\n", name)
		}
	}

	wantMethods, _ := cmd.Flags().GetBool("methods")
	if wantMethods || all {
		b, _ := json.Marshal(f.CLR.Methods)
		fmt.Println(prettyPrint(b))
	}
}

func dump(cmd *cobra.Command, args []string) {
	filePath := args[0]

	if !isDirectory(filePath) {
		dumpOne(filePath, cmd)
		return
	}

	var fileList []string
	filepath.Walk(filePath, func(path string, f os.FileInfo, err error) error {
		if err == nil && !f.IsDir() {
			fileList = append(fileList, path)
		}
		return nil
	})
	for _, file := range fileList {
		dumpOne(file, cmd)
	}
}

func main() {
	rootCmd := &cobra.Command{
		Use:   "dnpe",
		Short: "A .NET/CLR metadata analyzer",
		Long:  "Reads and disassembles .NET/CLR metadata embedded in PE files",
	}

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print version number",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println("dnpe 0.0.1")
		},
	}

	dumpCmd := &cobra.Command{
		Use:   "dump",
		Short: "Dumps CLR metadata from a PE file or directory of PE files",
		Args:  cobra.MinimumNArgs(1),
		Run:   dump,
	}

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(dumpCmd)

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	dumpCmd.Flags().BoolVarP(&dosHeader, "dosheader", "", false, "dump DOS header")
	dumpCmd.Flags().BoolVarP(&ntHeader, "ntheader", "", false, "dump NT header")
	dumpCmd.Flags().BoolVarP(&sections, "sections", "", false, "dump section headers")
	dumpCmd.Flags().BoolVarP(&clr, "clr", "", false, "dump CLR runtime header")
	dumpCmd.Flags().BoolVarP(&tables, "tables", "", false, "dump metadata tables")
	dumpCmd.Flags().BoolVarP(&strings, "strings", "", false, "dump the module name from the #Strings heap")
	dumpCmd.Flags().BoolVarP(&methods, "methods", "", false, "dump disassembled method bodies")
	dumpCmd.Flags().BoolVarP(&all, "all", "", false, "dump everything")

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
