// atlas 的 external_schema 載入器，輸出 gorm 模型對應的 DDL
//
//	data "external_schema" "gorm" {
//	  program = ["go", "run", "./tools/atlas"]
//	}
package main

import (
	"fmt"
	"io"
	"os"

	"ariga.io/atlas-provider-gorm/gormschema"

	"auctionhouse/models"
)

func main() {
	stmts, err := gormschema.New("postgres").Load(models.All()...)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load gorm schema: %v\n", err)
		os.Exit(1)
	}
	_, _ = io.WriteString(os.Stdout, stmts)
}
