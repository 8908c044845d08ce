package connection

import (
	"context"
	"net"
	"testing"
	"time"

	"golang.org/x/net/dns/dnsmessage"
	"gotest.tools/assert"
)

// serveDNS answers one query on a local UDP socket
func serveDNS(t *testing.T, rcode dnsmessage.RCode, answer [4]byte) string {
	pc, err := net.ListenPacket("udp", "127.0.0.1:0")
	assert.NilError(t, err)
	t.Cleanup(func() { pc.Close() })
	go func() {
		buf := make([]byte, 512)
		n, addr, err := pc.ReadFrom(buf)
		if err != nil {
			return
		}
		var p dnsmessage.Parser
		h, err := p.Start(buf[:n])
		if err != nil {
			return
		}
		q, err := p.Question()
		if err != nil {
			return
		}
		b := dnsmessage.NewBuilder(nil, dnsmessage.Header{ID: h.ID, Response: true, RCode: rcode})
		b.StartQuestions()
		b.Question(q)
		b.StartAnswers()
		if rcode == dnsmessage.RCodeSuccess {
			b.AResource(dnsmessage.ResourceHeader{Name: q.Name, Type: dnsmessage.TypeA, Class: dnsmessage.ClassINET, TTL: 0}, dnsmessage.AResource{A: answer})
		}
		msg, err := b.Finish()
		if err != nil {
			return
		}
		pc.WriteTo(msg, addr)
	}()
	return pc.LocalAddr().String()
}

func TestDNSResolverPublicAddress(t *testing.T) {
	server := serveDNS(t, dnsmessage.RCodeSuccess, [4]byte{203, 0, 113, 7})
	r, err := NewDNSResolver(server, "myip.opendns.com")
	assert.NilError(t, err)
	addr, err := r.PublicAddress(context.Background())
	assert.NilError(t, err)
	assert.Equal(t, addr, "203.0.113.7")
}

func TestDNSResolverFailure(t *testing.T) {
	server := serveDNS(t, dnsmessage.RCodeServerFailure, [4]byte{})
	r, err := NewDNSResolver(server, "")
	assert.NilError(t, err)
	_, err = r.PublicAddress(context.Background())
	assert.ErrorContains(t, err, "lookup failed")
}

func TestDNSResolverTimeout(t *testing.T) {
	pc, err := net.ListenPacket("udp", "127.0.0.1:0")
	assert.NilError(t, err)
	defer pc.Close()
	r, err := NewDNSResolver(pc.LocalAddr().String(), "")
	assert.NilError(t, err)
	r.timeout = 50 * time.Millisecond
	_, err = r.PublicAddress(context.Background())
	assert.ErrorContains(t, err, "reading answer")
}

func TestParseAnswerRejectsMismatchedID(t *testing.T) {
	b := dnsmessage.NewBuilder(nil, dnsmessage.Header{ID: 7, Response: true})
	msg, err := b.Finish()
	assert.NilError(t, err)
	_, err = parseAnswer(msg, 8)
	assert.ErrorContains(t, err, "does not match")
	_, err = parseAnswer(msg, 7)
	assert.ErrorContains(t, err, "no address")
}
