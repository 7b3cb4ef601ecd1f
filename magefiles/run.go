//go:build mage

package main

import (
	"fmt"

	"github.com/magefile/mage/mg"
)

type Run mg.Namespace

// Runs the testbed on the OpenGL backend.
func (Run) Testbed() error {
	fmt.Println("Run testbed...")
	if _, err := executeCmd("go", withArgs("run", ".", "-backend", "opengl"), withStream()); err != nil {
		return err
	}
	return nil
}

// Runs the testbed on the ebiten backend.
func (Run) Ebiten() error {
	fmt.Println("Run testbed on ebiten...")
	if _, err := executeCmd("go", withArgs("run", ".", "-backend", "ebiten"), withStream()); err != nil {
		return err
	}
	return nil
}
