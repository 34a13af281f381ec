// Package bled112 implements a client stack for Bluetooth Low Energy
// devices reachable through a BlueGiga BLED112 USB dongle.
//
// The dongle presents itself as a serial character device and speaks
// BGAPI, a binary command/response/event protocol. The stack is layered
// strictly bottom-up: serial (raw byte transport), bgapi (framing and
// command/response correlation), gatt (discovery, connections and
// attribute access) and myo (Thalmic Myo armband session on top of gatt).
//
// All exchanges are synchronous and caller-paced. No goroutines are
// spawned internally; a caller that wants timeouts can close the
// transport from a watchdog to force a blocked exchange to fail.
package bled112
