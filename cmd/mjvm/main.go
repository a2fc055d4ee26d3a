// This file is part of mjvm.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Command mjvm is the minimal host harness: load a bootstrap class, load
// an entry class, and invoke one of its methods with no arguments. It owns
// the only filesystem access in this module — classfile and vm talk
// exclusively through classfile.Parse and the hostio.BytesProvider
// interface.
package main

import (
	"fmt"
	"os"

	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"

	"github.com/cafebabevm/mjvm/classfile"
	"github.com/cafebabevm/mjvm/internal/hostio"
	"github.com/cafebabevm/mjvm/vm"
)

func main() {
	app := &cli.App{
		Name:  "mjvm",
		Usage: "load and run a class against the bundled bytecode interpreter",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "classpath",
				Usage:    "directory containing `<name>.class` files",
				Required: true,
			},
			&cli.StringFlag{
				Name:  "bootstrap",
				Usage: "class name to load before the entry class",
				Value: "java/lang/Object",
			},
			&cli.StringFlag{
				Name:     "entry-class",
				Usage:    "class name to load and invoke a method on",
				Required: true,
			},
			&cli.StringFlag{
				Name:  "entry-method",
				Usage: "method name to invoke",
				Value: "main",
			},
			&cli.StringFlag{
				Name:  "entry-descriptor",
				Usage: "method descriptor to invoke",
				Value: "()V",
			},
			&cli.BoolFlag{
				Name:  "dump",
				Usage: "dump operand/locals stacks to stdout after the run",
			},
			&cli.BoolFlag{
				Name:  "debug",
				Usage: "print the full error chain instead of a one-line message",
			},
		},
		Action: run,
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(c *cli.Context) error {
	provider, err := hostio.NewDirProvider(c.String("classpath"))
	if err != nil {
		return errors.Wrap(err, "constructing classpath provider")
	}

	if _, err := loadClass(provider, c.String("bootstrap")); err != nil {
		return errors.Wrap(err, "loading bootstrap class")
	}
	entryClass, err := loadClass(provider, c.String("entry-class"))
	if err != nil {
		return errors.Wrap(err, "loading entry class")
	}

	i := vm.New(nil)
	runErr := i.Invoke(entryClass, c.String("entry-method"), c.String("entry-descriptor"), nil)

	if c.Bool("dump") {
		if err := i.Dump(os.Stdout); err != nil {
			fmt.Fprintln(os.Stderr, err)
		}
	}
	if runErr != nil {
		if c.Bool("debug") {
			return fmt.Errorf("%+v", runErr)
		}
		return runErr
	}
	return nil
}

func loadClass(provider hostio.BytesProvider, name string) (*classfile.Class, error) {
	b, err := provider.Bytes(name)
	if err != nil {
		return nil, err
	}
	return classfile.Parse(name, b)
}
