package resolve

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/miekg/dns"
)

const (
	// DefaultUpstream is the recursive resolver used when none is configured.
	DefaultUpstream = "8.8.8.8:53"

	// DefaultTimeout bounds a single DNS exchange.
	DefaultTimeout = 10 * time.Second

	edns0BufSize = 4096
)

// TXTResolver looks up TXT records. Each returned string is one record
// with its character-strings concatenated.
type TXTResolver interface {
	LookupTXT(ctx context.Context, name string) ([]string, error)
}

// DNSSECResolver queries a validating recursive resolver and accepts only
// answers carrying the AD (Authenticated Data) flag.
type DNSSECResolver struct {
	// Upstream is the resolver address, e.g. "1.1.1.1:53".
	Upstream string

	// Timeout bounds each exchange. Zero means DefaultTimeout.
	Timeout time.Duration
}

var _ TXTResolver = (*DNSSECResolver)(nil)

// NewDNSSECResolver returns a resolver for upstream, or DefaultUpstream
// if upstream is empty.
func NewDNSSECResolver(upstream string) *DNSSECResolver {
	if upstream == "" {
		upstream = DefaultUpstream
	}
	return &DNSSECResolver{Upstream: upstream, Timeout: DefaultTimeout}
}

func (r *DNSSECResolver) exchange(ctx context.Context, name string, qtype uint16) (*dns.Msg, error) {
	msg := new(dns.Msg)
	msg.SetQuestion(dns.Fqdn(name), qtype)
	msg.RecursionDesired = true
	msg.SetEdns0(edns0BufSize, true) // DO bit

	timeout := r.Timeout
	if timeout == 0 {
		timeout = DefaultTimeout
	}
	client := &dns.Client{Timeout: timeout}
	resp, _, err := client.ExchangeContext(ctx, msg, r.Upstream)
	if err != nil {
		return nil, fmt.Errorf("%w: %s %s: %w", ErrLookupFailed, name, dns.TypeToString[qtype], err)
	}
	// Truncated UDP answers are retried over TCP.
	if resp.Truncated {
		tcp := &dns.Client{Net: "tcp", Timeout: timeout}
		if resp, _, err = tcp.ExchangeContext(ctx, msg, r.Upstream); err != nil {
			return nil, fmt.Errorf("%w: %s %s over tcp: %w", ErrLookupFailed, name, dns.TypeToString[qtype], err)
		}
	}
	return resp, nil
}

// LookupTXT returns the TXT records of name. NXDOMAIN yields no records;
// it is still required to be authenticated.
func (r *DNSSECResolver) LookupTXT(ctx context.Context, name string) ([]string, error) {
	resp, err := r.exchange(ctx, name, dns.TypeTXT)
	if err != nil {
		return nil, err
	}
	return txtAnswers(name, resp)
}

// txtAnswers checks resp and extracts its TXT records.
func txtAnswers(name string, resp *dns.Msg) ([]string, error) {
	if resp.Rcode != dns.RcodeSuccess && resp.Rcode != dns.RcodeNameError {
		return nil, fmt.Errorf("%w: %s TXT: rcode %s", ErrLookupFailed, name, dns.RcodeToString[resp.Rcode])
	}
	if !resp.AuthenticatedData {
		return nil, fmt.Errorf("%w: AD flag not set for %s TXT", ErrDNSSECValidationFailed, name)
	}

	var txts []string
	for _, rr := range resp.Answer {
		if txt, ok := rr.(*dns.TXT); ok {
			txts = append(txts, strings.Join(txt.Txt, ""))
		}
	}
	return txts, nil
}
