//go:build rtmidi

package main

// The rtmidi driver needs cgo and the system rtmidi library; without it
// MIDI port lookup finds no ports.
import _ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv"
