package dnsbench

import (
	"crypto/tls"

	"github.com/miekg/dns"
)

// Server represents simple DNS server.
type Server struct {
	Addr  string
	inner *dns.Server
}

// Close shuts down running DNS server instance.
func (s *Server) Close() {
	s.inner.Shutdown()
}

// NewServer creates and starts new DNS server instance.
func NewServer(network string, tlsConfig *tls.Config, f dns.HandlerFunc) *Server {
	ch := make(chan bool)
	s := &dns.Server{Net: network, Addr: "127.0.0.1:0", TLSConfig: tlsConfig, NotifyStartedFunc: func() { close(ch) }, Handler: f}

	go func() {
		if err := s.ListenAndServe(); err != nil {
			panic(err)
		}
	}()

	<-ch
	server := Server{inner: s}
	if network == "udp" {
		server.Addr = s.PacketConn.LocalAddr().String()
	} else {
		server.Addr = s.Listener.Addr().String()
	}
	return &server
}

func A(rr string) *dns.A { r, _ := dns.NewRR(rr); return r.(*dns.A) }

// successHandler answers every question with a single A record.
func successHandler(w dns.ResponseWriter, r *dns.Msg) {
	ret := new(dns.Msg)
	ret.SetReply(r)
	ret.Answer = append(ret.Answer, A(r.Question[0].Name+" 300 IN A 127.0.0.1"))
	w.WriteMsg(ret)
}

// rcodeHandler answers every question with the given response code.
func rcodeHandler(rcode int) dns.HandlerFunc {
	return func(w dns.ResponseWriter, r *dns.Msg) {
		ret := new(dns.Msg)
		ret.SetReply(r)
		ret.Rcode = rcode
		w.WriteMsg(ret)
	}
}

// testResolver builds a resolver configuration pointing at a local test
// server address.
func testResolver(addr string) ResolverConfig {
	return ResolverConfig{Name: "test", IPv4: addr}
}
