// File: affinity/affinity.go
// Author: momentics <momentics@gmail.com>
//
// Pins the goroutine that runs the event loop to one logical CPU.

package affinity

import "runtime"

// Unpinned disables pinning.
const Unpinned = -1

// Pin locks the calling goroutine to its OS thread and restricts that thread
// to cpuID. The returned release func unlocks the thread; it is safe to call
// when Pin failed or cpuID is Unpinned.
func Pin(cpuID int) (release func(), err error) {
	if cpuID == Unpinned {
		return func() {}, nil
	}
	runtime.LockOSThread()
	if err := setAffinityPlatform(cpuID); err != nil {
		runtime.UnlockOSThread()
		return func() {}, err
	}
	return runtime.UnlockOSThread, nil
}
