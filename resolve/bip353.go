// Package resolve turns human-readable payment handles into on-chain
// addresses using BIP-353 DNS payment instructions.
//
// A handle user@domain (optionally prefixed with ₿) is looked up as a
// DNSSEC-signed TXT record at user.user._bitcoin-payment.domain whose
// content is a bitcoin: URI.
package resolve

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/bitfsorg/walletcore-go/address"
	"github.com/bitfsorg/walletcore-go/log"
)

const (
	bitcoinScheme = "bitcoin:"
	recordLabel   = "user._bitcoin-payment"
	maxNameLen    = 253
)

// Handle is a parsed user@domain payment handle.
type Handle struct {
	User   string
	Domain string
}

func (h Handle) String() string { return h.User + "@" + h.Domain }

// RecordName returns the DNS name holding the handle's instructions.
func (h Handle) RecordName() string {
	return h.User + "." + recordLabel + "." + h.Domain
}

// ParseHandle parses user@domain, with or without a leading ₿. Both parts
// are lowercased.
func ParseHandle(s string) (Handle, error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "₿")
	user, domain, ok := strings.Cut(s, "@")
	if !ok || strings.Contains(domain, "@") {
		return Handle{}, fmt.Errorf("%w: %q", ErrInvalidHandle, s)
	}
	h := Handle{User: strings.ToLower(user), Domain: strings.ToLower(strings.TrimSuffix(domain, "."))}
	if !validLabel(h.User) {
		return Handle{}, fmt.Errorf("%w: user %q", ErrInvalidHandle, user)
	}
	labels := strings.Split(h.Domain, ".")
	if len(labels) < 2 {
		return Handle{}, fmt.Errorf("%w: domain %q", ErrInvalidHandle, domain)
	}
	for _, l := range labels {
		if !validLabel(l) {
			return Handle{}, fmt.Errorf("%w: domain %q", ErrInvalidHandle, domain)
		}
	}
	if len(h.RecordName()) > maxNameLen {
		return Handle{}, fmt.Errorf("%w: name too long", ErrInvalidHandle)
	}
	return h, nil
}

// validLabel accepts a DNS label of letters, digits, '-' and '_'.
func validLabel(l string) bool {
	if l == "" || len(l) > 63 {
		return false
	}
	for _, c := range l {
		switch {
		case c >= 'a' && c <= 'z', c >= '0' && c <= '9', c == '-', c == '_':
		default:
			return false
		}
	}
	return true
}

// Instructions are the payment instructions published for a handle.
type Instructions struct {
	Handle Handle
	URI    string

	// Address is the on-chain address for the resolver's network; empty
	// when the URI carries none.
	Address string

	// Params holds the URI query parameters, keys lowercased.
	Params map[string]string
}

// ParseURI parses a bitcoin: URI. The address is the URI body when
// present, otherwise the first query parameter naming a witness address
// for p's HRP (e.g. bc=bc1q...).
func ParseURI(uri string, p *address.Params) (*Instructions, error) {
	if len(uri) < len(bitcoinScheme) || !strings.EqualFold(uri[:len(bitcoinScheme)], bitcoinScheme) {
		return nil, fmt.Errorf("%w: missing bitcoin: scheme", ErrInvalidURI)
	}
	body, query, _ := strings.Cut(uri[len(bitcoinScheme):], "?")

	values, err := url.ParseQuery(query)
	if err != nil {
		return nil, fmt.Errorf("%w: query: %w", ErrInvalidURI, err)
	}
	in := &Instructions{URI: uri, Params: make(map[string]string, len(values))}
	for k, v := range values {
		key := strings.ToLower(k)
		if _, dup := in.Params[key]; dup || len(v) != 1 {
			return nil, fmt.Errorf("%w: repeated parameter %q", ErrInvalidURI, k)
		}
		in.Params[key] = v[0]
	}

	addr := body
	if addr == "" {
		addr = in.Params[p.Bech32HRP]
	}
	if addr == "" {
		return in, nil
	}
	if err := address.Validate(addr, p); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidURI, err)
	}
	in.Address = addr
	return in, nil
}

// Resolver resolves BIP-353 handles to addresses on one Bitcoin network.
type Resolver struct {
	txt    TXTResolver
	params *address.Params
}

// New returns a Resolver querying txt, or a DNSSECResolver on
// DefaultUpstream if txt is nil. A nil params selects mainnet.
func New(txt TXTResolver, params *address.Params) *Resolver {
	if txt == nil {
		txt = NewDNSSECResolver("")
	}
	if params == nil {
		params = &address.BitcoinMainNet
	}
	return &Resolver{txt: txt, params: params}
}

// Lookup fetches and parses the payment instructions of handle. Exactly
// one TXT record at the handle's name must be a bitcoin: URI.
func (r *Resolver) Lookup(ctx context.Context, handle string) (*Instructions, error) {
	h, err := ParseHandle(handle)
	if err != nil {
		return nil, err
	}
	name := h.RecordName()
	txts, err := r.txt.LookupTXT(ctx, name)
	if err != nil {
		return nil, err
	}

	var uris []string
	for _, t := range txts {
		if len(t) >= len(bitcoinScheme) && strings.EqualFold(t[:len(bitcoinScheme)], bitcoinScheme) {
			uris = append(uris, t)
		}
	}
	switch len(uris) {
	case 0:
		return nil, fmt.Errorf("%w: %s", ErrNoInstructions, name)
	case 1:
	default:
		return nil, fmt.Errorf("%w: %d records at %s", ErrAmbiguous, len(uris), name)
	}

	in, err := ParseURI(uris[0], r.params)
	if err != nil {
		return nil, err
	}
	in.Handle = h
	log.Resolve.Debug().Str("handle", h.String()).Str("uri", in.URI).Msg("payment instructions")
	return in, nil
}

// Resolve returns the on-chain address published for handle.
func (r *Resolver) Resolve(ctx context.Context, handle string) (string, error) {
	in, err := r.Lookup(ctx, handle)
	if err != nil {
		return "", err
	}
	if in.Address == "" {
		return "", fmt.Errorf("%w: %s on %s", ErrNoAddress, in.Handle, r.params.Name)
	}
	return in.Address, nil
}
