package connection

import (
	"context"
	"math/rand"
	"net"
	"strings"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/net/dns/dnsmessage"
)

const (
	DefaultReachabilityServer = "resolver1.opendns.com:53"
	DefaultReachabilityName   = "myip.opendns.com."
	defaultLookupTimeout      = 5 * time.Second
)

// Resolver finds the address the device is seen from on the internet
type Resolver interface {
	PublicAddress(ctx context.Context) (string, error)
}

// DNSResolver asks a resolver that answers a well known name with the querying address
type DNSResolver struct {
	server  string
	name    dnsmessage.Name
	timeout time.Duration
	dialer  *net.Dialer
}

func NewDNSResolver(server string, name string) (*DNSResolver, error) {
	if server == "" {
		server = DefaultReachabilityServer
	}
	if name == "" {
		name = DefaultReachabilityName
	}
	if !strings.HasSuffix(name, ".") {
		name += "."
	}
	n, err := dnsmessage.NewName(name)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid lookup name %q", name)
	}
	return &DNSResolver{server: server, name: n, timeout: defaultLookupTimeout, dialer: &net.Dialer{}}, nil
}

func (r *DNSResolver) PublicAddress(ctx context.Context) (string, error) {
	id := uint16(rand.Intn(1 << 16))
	query, err := r.buildQuery(id)
	if err != nil {
		return "", err
	}
	conn, err := r.dialer.DialContext(ctx, "udp", r.server)
	if err != nil {
		return "", errors.Wrapf(err, "dialing %s", r.server)
	}
	defer conn.Close()
	deadline := time.Now().Add(r.timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	conn.SetDeadline(deadline)
	if _, err := conn.Write(query); err != nil {
		return "", errors.Wrap(err, "sending query")
	}
	buf := make([]byte, 512)
	n, err := conn.Read(buf)
	if err != nil {
		return "", errors.Wrap(err, "reading answer")
	}
	return parseAnswer(buf[:n], id)
}

func (r *DNSResolver) buildQuery(id uint16) ([]byte, error) {
	b := dnsmessage.NewBuilder(make([]byte, 0, 512), dnsmessage.Header{ID: id, RecursionDesired: true})
	b.EnableCompression()
	if err := b.StartQuestions(); err != nil {
		return nil, errors.Wrap(err, "building query")
	}
	if err := b.Question(dnsmessage.Question{Name: r.name, Type: dnsmessage.TypeA, Class: dnsmessage.ClassINET}); err != nil {
		return nil, errors.Wrap(err, "building query")
	}
	msg, err := b.Finish()
	return msg, errors.Wrap(err, "building query")
}

func parseAnswer(msg []byte, id uint16) (string, error) {
	var p dnsmessage.Parser
	h, err := p.Start(msg)
	if err != nil {
		return "", errors.Wrap(err, "parsing answer")
	}
	if h.ID != id {
		return "", errors.Errorf("answer id %d does not match query id %d", h.ID, id)
	}
	if h.RCode != dnsmessage.RCodeSuccess {
		return "", errors.Errorf("lookup failed: %s", h.RCode)
	}
	if err := p.SkipAllQuestions(); err != nil {
		return "", errors.Wrap(err, "parsing answer")
	}
	for {
		ah, err := p.AnswerHeader()
		if err == dnsmessage.ErrSectionDone {
			break
		}
		if err != nil {
			return "", errors.Wrap(err, "parsing answer")
		}
		if ah.Type != dnsmessage.TypeA {
			if err := p.SkipAnswer(); err != nil {
				return "", errors.Wrap(err, "parsing answer")
			}
			continue
		}
		a, err := p.AResource()
		if err != nil {
			return "", errors.Wrap(err, "parsing answer")
		}
		return net.IP(a.A[:]).String(), nil
	}
	return "", errors.New("no address in answer")
}
