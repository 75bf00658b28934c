// Package utils contains small shared helpers.
package utils

import (
	"fmt"

	"github.com/google/gopacket/layers"
	"golang.org/x/net/bpf"

	"firestige.xyz/strix/internal/core"
)

// maxFilterPorts bounds the compare chains so every conditional jump in the
// assembled program stays within the 8-bit skip range of classic BPF.
const maxFilterPorts = 48

// PortFilter assembles a classic-BPF program that accepts TCP/UDP packets
// whose source or destination port is in ports. The program is laid out for
// the capture's link type and is run by the pure-Go bpf.VM, so file replay
// needs no libpcap. IPv4 fragments past the first carry no ports and are
// rejected, as are IPv6 packets with extension headers before the transport
// header.
func PortFilter(linkType layers.LinkType, ports []uint16) (*bpf.VM, error) {
	if len(ports) == 0 {
		return nil, fmt.Errorf("port filter requires at least one port")
	}
	if len(ports) > maxFilterPorts {
		return nil, fmt.Errorf("port filter supports at most %d ports, got %d",
			maxFilterPorts, len(ports))
	}

	p := newProgram()
	switch linkType {
	case layers.LinkTypeEthernet:
		p.emit(bpf.LoadAbsolute{Off: 12, Size: 2})
		p.jump(bpf.JumpEqual, 0x86dd, "ip6", "")
		p.jump(bpf.JumpEqual, 0x0800, "ip4", "reject")
		p.ipv4(14, ports)
		p.ipv6(14, ports)
	case layers.LinkTypeRaw:
		// Raw captures mix address families; dispatch on the version
		// nibble of the first byte.
		p.emit(bpf.LoadAbsolute{Off: 0, Size: 1})
		p.emit(bpf.ALUOpConstant{Op: bpf.ALUOpAnd, Val: 0xf0})
		p.jump(bpf.JumpEqual, 0x40, "ip4", "")
		p.jump(bpf.JumpEqual, 0x60, "ip6", "reject")
		p.ipv4(0, ports)
		p.ipv6(0, ports)
	case layers.LinkTypeIPv4:
		p.ipv4(0, ports)
	case layers.LinkTypeIPv6:
		p.ipv6(0, ports)
	default:
		return nil, fmt.Errorf("%w: port filtering on %s", core.ErrUnsupportedLink, linkType)
	}
	p.label("accept")
	p.emit(bpf.RetConstant{Val: 0x40000})
	p.label("reject")
	p.emit(bpf.RetConstant{Val: 0})

	prog, err := p.assemble()
	if err != nil {
		return nil, fmt.Errorf("failed to assemble port filter: %w", err)
	}
	vm, err := bpf.NewVM(prog)
	if err != nil {
		return nil, fmt.Errorf("failed to assemble port filter: %w", err)
	}
	return vm, nil
}

// ipv4 matches TCP/UDP ports in an IPv4 packet starting at ipOff.
func (p *program) ipv4(ipOff uint32, ports []uint16) {
	p.label("ip4")
	p.emit(bpf.LoadAbsolute{Off: ipOff + 9, Size: 1})
	p.jump(bpf.JumpEqual, 6, "ip4ports", "")
	p.jump(bpf.JumpEqual, 17, "ip4ports", "reject")
	p.label("ip4ports")
	p.emit(bpf.LoadAbsolute{Off: ipOff + 6, Size: 2})
	p.jump(bpf.JumpBitsSet, 0x1fff, "reject", "")
	p.emit(bpf.LoadMemShift{Off: ipOff})
	p.emit(bpf.LoadIndirect{Off: ipOff, Size: 2})
	for _, port := range ports {
		p.jump(bpf.JumpEqual, uint32(port), "accept", "")
	}
	p.emit(bpf.LoadIndirect{Off: ipOff + 2, Size: 2})
	for _, port := range ports {
		p.jump(bpf.JumpEqual, uint32(port), "accept", "")
	}
	p.goTo("reject")
}

// ipv6 matches TCP/UDP ports in an IPv6 packet starting at ipOff. Only the
// fixed 40-byte header is inspected: a next-header value other than TCP or
// UDP (extension headers included) rejects the packet.
func (p *program) ipv6(ipOff uint32, ports []uint16) {
	p.label("ip6")
	p.emit(bpf.LoadAbsolute{Off: ipOff + 6, Size: 1})
	p.jump(bpf.JumpEqual, 6, "ip6ports", "")
	p.jump(bpf.JumpEqual, 17, "ip6ports", "reject")
	p.label("ip6ports")
	p.emit(bpf.LoadAbsolute{Off: ipOff + 40, Size: 2})
	for _, port := range ports {
		p.jump(bpf.JumpEqual, uint32(port), "accept", "")
	}
	p.emit(bpf.LoadAbsolute{Off: ipOff + 42, Size: 2})
	for _, port := range ports {
		p.jump(bpf.JumpEqual, uint32(port), "accept", "")
	}
	p.goTo("reject")
}

// program accumulates instructions with named jump targets; assemble resolves
// them to skip counts and rejects any jump the 8-bit skip field cannot hold.
type program struct {
	insns   []bpf.Instruction
	labels  map[string]int
	condRef map[int][2]string // JumpIf index → [onTrue, onFalse] labels
	jmpRef  map[int]string    // Jump index → target label
}

func newProgram() *program {
	return &program{
		labels:  make(map[string]int),
		condRef: make(map[int][2]string),
		jmpRef:  make(map[int]string),
	}
}

func (p *program) emit(ins bpf.Instruction) { p.insns = append(p.insns, ins) }

func (p *program) label(name string) { p.labels[name] = len(p.insns) }

// jump emits a conditional jump; an empty label means fall through.
func (p *program) jump(cond bpf.JumpTest, val uint32, onTrue, onFalse string) {
	p.condRef[len(p.insns)] = [2]string{onTrue, onFalse}
	p.emit(bpf.JumpIf{Cond: cond, Val: val})
}

func (p *program) goTo(target string) {
	p.jmpRef[len(p.insns)] = target
	p.emit(bpf.Jump{})
}

func (p *program) assemble() ([]bpf.Instruction, error) {
	skipTo := func(from int, name string) (int, error) {
		target, ok := p.labels[name]
		if !ok {
			return 0, fmt.Errorf("undefined label %q", name)
		}
		skip := target - from - 1
		if skip < 0 {
			return 0, fmt.Errorf("backward jump to %q at %d", name, from)
		}
		return skip, nil
	}

	for idx, refs := range p.condRef {
		ins := p.insns[idx].(bpf.JumpIf)
		if refs[0] != "" {
			skip, err := skipTo(idx, refs[0])
			if err != nil {
				return nil, err
			}
			if skip > 255 {
				return nil, fmt.Errorf("jump to %q at %d exceeds skip range", refs[0], idx)
			}
			ins.SkipTrue = uint8(skip)
		}
		if refs[1] != "" {
			skip, err := skipTo(idx, refs[1])
			if err != nil {
				return nil, err
			}
			if skip > 255 {
				return nil, fmt.Errorf("jump to %q at %d exceeds skip range", refs[1], idx)
			}
			ins.SkipFalse = uint8(skip)
		}
		p.insns[idx] = ins
	}
	for idx, name := range p.jmpRef {
		skip, err := skipTo(idx, name)
		if err != nil {
			return nil, err
		}
		p.insns[idx] = bpf.Jump{Skip: uint32(skip)}
	}
	return p.insns, nil
}
