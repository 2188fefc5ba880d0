/*
Package pinsim provides a discrete event simulation kernel and a multi-valued
wire model suitable for simulating the pin fabric of a microcontroller.

Wires carry one of the levels 0, 1, L (weak 0), H (weak 1), Z (high
impedance), X (undefined) or an analog magnitude. A Net combines the
contributions of all its drivers with Resolve, so that electrical conflicts,
pull resistors and open-drain outputs behave like they do on real silicon.

Components are built from processes that wait on signals, nets or events.
Processes run in delta cycles: writes are buffered and only committed once
every runnable process has run, so all processes woken by the same change see
the same snapshot. Simulated time only advances when no delta cycle is pending.

Package pinlib builds the pin models and multiplexers on top of this kernel
and package esp32 assembles them into a GPIO crossbar.

*/
package pinsim
