package graph

// Arena owns the two parallel device/net arrays and their current class
// lists for one Compare call. Index 0 of Devices and Nets is a reserved
// sentinel so that the zero value of DeviceIndex/NetIndex can mean "none"
// (used by disconnected pins, per spec.md §4.1).
type Arena struct {
	Devices []Device
	Nets    []Net

	DeviceClasses []*DeviceClass
	NetClasses    []*NetClass
}

// New returns an empty arena with the sentinel slot reserved.
func New() *Arena {
	return &Arena{
		Devices: make([]Device, 1),
		Nets:    make([]Net, 1),
	}
}

// AddDevice appends a device and returns its index.
func (a *Arena) AddDevice(d Device) DeviceIndex {
	d.classIdx = -1
	a.Devices = append(a.Devices, d)
	return DeviceIndex(len(a.Devices) - 1)
}

// AddNet appends a net and returns its index.
func (a *Arena) AddNet(n Net) NetIndex {
	n.classIdx = -1
	a.Nets = append(a.Nets, n)
	return NetIndex(len(a.Nets) - 1)
}

// Device returns a pointer to the device at idx.
func (a *Arena) Device(idx DeviceIndex) *Device { return &a.Devices[idx] }

// Net returns a pointer to the net at idx.
func (a *Arena) Net(idx NetIndex) *Net { return &a.Nets[idx] }

// DeviceClassOf returns the DeviceClass currently owning idx, or nil if
// unassigned.
func (a *Arena) DeviceClassOf(idx DeviceIndex) *DeviceClass {
	ci := a.Devices[idx].classIdx
	if ci < 0 {
		return nil
	}
	return a.DeviceClasses[ci]
}

// NetClassOf mirrors DeviceClassOf for nets.
func (a *Arena) NetClassOf(idx NetIndex) *NetClass {
	ci := a.Nets[idx].classIdx
	if ci < 0 {
		return nil
	}
	return a.NetClasses[ci]
}

// SetDeviceClasses replaces the device class list and re-links every
// member's classIdx back-pointer. Callers (Fracture) build the new slice
// from scratch each iteration; this keeps the back-pointer invariant
// (every Device belongs to exactly one class, invariant 1) in one place.
func (a *Arena) SetDeviceClasses(classes []*DeviceClass) {
	a.DeviceClasses = classes
	for ci, c := range classes {
		for _, idx := range c.Members {
			a.Devices[idx].classIdx = ci
		}
	}
}

// SetNetClasses mirrors SetDeviceClasses for nets.
func (a *Arena) SetNetClasses(classes []*NetClass) {
	a.NetClasses = classes
	for ci, c := range classes {
		for _, idx := range c.Members {
			a.Nets[idx].classIdx = ci
		}
	}
}

// AllDevicesOneClass seeds a single root DeviceClass containing every
// device in the arena (spec.md §2: "initially containing one class that
// holds the union of both cells' devices/nets").
func (a *Arena) AllDevicesOneClass() {
	members := make([]DeviceIndex, 0, len(a.Devices)-1)
	var c1, c2 int
	for i := 1; i < len(a.Devices); i++ {
		idx := DeviceIndex(i)
		members = append(members, idx)
		if a.Devices[i].Circuit == Circuit1 {
			c1++
		} else {
			c2++
		}
	}
	a.SetDeviceClasses([]*DeviceClass{{
		Members: members, Count1: c1, Count2: c2, LegalPartition: c1 == c2,
	}})
}

// AllNetsOneClass mirrors AllDevicesOneClass for nets.
func (a *Arena) AllNetsOneClass() {
	members := make([]NetIndex, 0, len(a.Nets)-1)
	var c1, c2 int
	for i := 1; i < len(a.Nets); i++ {
		idx := NetIndex(i)
		members = append(members, idx)
		if a.Nets[i].Circuit == Circuit1 {
			c1++
		} else {
			c2++
		}
	}
	a.SetNetClasses([]*NetClass{{
		Members: members, Count1: c1, Count2: c2, LegalPartition: c1 == c2,
	}})
}

// DeviceCount returns the number of real (non-sentinel) devices.
func (a *Arena) DeviceCount() int { return len(a.Devices) - 1 }

// NetCount returns the number of real (non-sentinel) nets.
func (a *Arena) NetCount() int { return len(a.Nets) - 1 }
