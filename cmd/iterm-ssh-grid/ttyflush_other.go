//go:build !darwin && !linux

package main

func flushTTYInput() {}
