// Package decoder turns captured frames into decoded packets with an
// application payload, using gopacket's zero-allocation layer parser.
package decoder

import (
	"fmt"
	"net/netip"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"

	"firestige.xyz/strix/internal/core"
)

// Decoder decodes Ethernet/IPv4/IPv6/TCP/UDP frames. Not safe for
// concurrent use: the layer structs are reused across calls.
type Decoder struct {
	parser *gopacket.DecodingLayerParser

	eth     layers.Ethernet
	dot1q   layers.Dot1Q
	ip4     layers.IPv4
	ip6     layers.IPv6
	tcp     layers.TCP
	udp     layers.UDP
	payload gopacket.Payload

	decoded []gopacket.LayerType
}

// New creates a decoder for frames of the given link type. Only Ethernet
// and raw-IP captures are supported.
func New(linkType layers.LinkType) (*Decoder, error) {
	d := &Decoder{}

	var first gopacket.LayerType
	switch linkType {
	case layers.LinkTypeEthernet:
		first = layers.LayerTypeEthernet
	case layers.LinkTypeRaw, layers.LinkTypeIPv4:
		first = layers.LayerTypeIPv4
	case layers.LinkTypeIPv6:
		first = layers.LayerTypeIPv6
	default:
		return nil, fmt.Errorf("%w: %s", core.ErrUnsupportedLink, linkType)
	}

	d.parser = gopacket.NewDecodingLayerParser(
		first,
		&d.eth,
		&d.dot1q,
		&d.ip4,
		&d.ip6,
		&d.tcp,
		&d.udp,
		&d.payload,
	)
	d.parser.IgnoreUnsupported = true
	return d, nil
}

// Decode extracts transport endpoints and the application payload from one
// frame. Frames without an IP/TCP-or-UDP stack return ErrUnsupportedProto.
func (d *Decoder) Decode(pkt *core.RawPacket) (*core.DecodedPacket, error) {
	if len(pkt.Data) == 0 {
		return nil, core.ErrPacketTooShort
	}

	d.decoded = d.decoded[:0]
	if err := d.parser.DecodeLayers(pkt.Data, &d.decoded); err != nil {
		return nil, err
	}

	out := &core.DecodedPacket{Timestamp: pkt.Timestamp}

	haveIP, haveTransport := false, false
	for _, layerType := range d.decoded {
		switch layerType {
		case gopacket.LayerTypePayload:
			out.Payload = d.payload
		case layers.LayerTypeIPv4:
			out.SrcIP, _ = netip.AddrFromSlice(d.ip4.SrcIP.To4())
			out.DstIP, _ = netip.AddrFromSlice(d.ip4.DstIP.To4())
			haveIP = true
		case layers.LayerTypeIPv6:
			out.SrcIP, _ = netip.AddrFromSlice(d.ip6.SrcIP)
			out.DstIP, _ = netip.AddrFromSlice(d.ip6.DstIP)
			haveIP = true
		case layers.LayerTypeTCP:
			out.SrcPort = uint16(d.tcp.SrcPort)
			out.DstPort = uint16(d.tcp.DstPort)
			out.Protocol = 6
			haveTransport = true
		case layers.LayerTypeUDP:
			out.SrcPort = uint16(d.udp.SrcPort)
			out.DstPort = uint16(d.udp.DstPort)
			out.Protocol = 17
			haveTransport = true
		}
	}

	if !haveIP || !haveTransport {
		return nil, core.ErrUnsupportedProto
	}

	return out, nil
}
