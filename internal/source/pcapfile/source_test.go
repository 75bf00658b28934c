package pcapfile

import (
	"io"
	"net"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/google/gopacket/pcapgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writePcap(t *testing.T, linkType layers.LinkType, packets [][]byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "capture.pcap")
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	w := pcapgo.NewWriter(f)
	require.NoError(t, w.WriteFileHeader(65536, linkType))
	ts := time.Now()
	for _, data := range packets {
		ci := gopacket.CaptureInfo{
			Timestamp:     ts,
			CaptureLength: len(data),
			Length:        len(data),
		}
		require.NoError(t, w.WritePacket(ci, data))
	}
	return path
}

func serialize(t *testing.T, ls ...gopacket.SerializableLayer) []byte {
	t.Helper()
	buf := gopacket.NewSerializeBuffer()
	opts := gopacket.SerializeOptions{FixLengths: true}
	require.NoError(t, gopacket.SerializeLayers(buf, opts, ls...))
	return buf.Bytes()
}

func ipv4UDP(dstPort uint16, payload []byte) []gopacket.SerializableLayer {
	ip := &layers.IPv4{
		Version:  4,
		TTL:      64,
		Protocol: layers.IPProtocolUDP,
		SrcIP:    net.IPv4(10, 0, 0, 1),
		DstIP:    net.IPv4(10, 0, 0, 2),
	}
	udp := &layers.UDP{SrcPort: 40000, DstPort: layers.UDPPort(dstPort)}
	return []gopacket.SerializableLayer{ip, udp, gopacket.Payload(payload)}
}

func ethernetUDP(t *testing.T, dstPort uint16, payload []byte) []byte {
	eth := &layers.Ethernet{
		SrcMAC:       net.HardwareAddr{0x02, 0, 0, 0, 0, 1},
		DstMAC:       net.HardwareAddr{0x02, 0, 0, 0, 0, 2},
		EthernetType: layers.EthernetTypeIPv4,
	}
	return serialize(t, append([]gopacket.SerializableLayer{eth}, ipv4UDP(dstPort, payload)...)...)
}

// A port filter on a LINKTYPE_RAW capture must still pass matching packets:
// the filter program is laid out for the capture's link type, not for
// Ethernet framing.
func TestSource_RawLinkPortFilter(t *testing.T) {
	payload := []byte("v=0\r\ns=Raw Capture\r\n")
	pkt := serialize(t, ipv4UDP(9875, payload)...)
	path := writePcap(t, layers.LinkTypeRaw, [][]byte{pkt})

	src := New(path, []uint16{9875})
	require.NoError(t, src.Open())
	defer src.Close()

	got, err := src.Next()
	require.NoError(t, err)
	assert.Equal(t, payload, got.Payload)
	assert.Equal(t, uint16(9875), got.DstPort)

	_, err = src.Next()
	assert.ErrorIs(t, err, io.EOF)
}

func TestSource_EthernetPortFilter(t *testing.T) {
	keep := []byte("v=0\r\n")
	path := writePcap(t, layers.LinkTypeEthernet, [][]byte{
		ethernetUDP(t, 9875, keep),
		ethernetUDP(t, 5060, []byte("INVITE")),
	})

	src := New(path, []uint16{9875})
	require.NoError(t, src.Open())
	defer src.Close()

	got, err := src.Next()
	require.NoError(t, err)
	assert.Equal(t, keep, got.Payload)

	_, err = src.Next()
	assert.ErrorIs(t, err, io.EOF)
}

func TestSource_NoFilterReplaysEverything(t *testing.T) {
	path := writePcap(t, layers.LinkTypeEthernet, [][]byte{
		ethernetUDP(t, 9875, []byte("v=0\r\n")),
		ethernetUDP(t, 5060, []byte("INVITE")),
	})

	src := New(path, nil)
	require.NoError(t, src.Open())
	defer src.Close()

	var payloads []string
	for {
		pkt, err := src.Next()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		payloads = append(payloads, string(pkt.Payload))
	}
	assert.Equal(t, []string{"v=0\r\n", "INVITE"}, payloads)
}

func TestSource_MissingFile(t *testing.T) {
	src := New("/nonexistent/capture.pcap", nil)
	assert.Error(t, src.Open())
}
