// Command serdex converts documents between the registered formats and
// checks serde struct tags in Go sources.
package main

import (
	"os"

	_ "github.com/hengadev/serdex/formats/json"
	_ "github.com/hengadev/serdex/formats/msgpack"
	_ "github.com/hengadev/serdex/formats/yaml"
)

func main() {
	a := newApp()
	if err := a.execute(a.rootCmd(), os.Args[1:]); err != nil {
		os.Exit(1)
	}
}
