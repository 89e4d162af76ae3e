package dnsbench

import (
	"log"
	"time"

	"github.com/miekg/dns"
)

func logRequest(resolver string, transportType Transport, domain string, recordType RecordType, resp *dns.Msg, err error, dur time.Duration) {
	rcode := "<nil>"
	answers := 0
	if resp != nil {
		rcode = dns.RcodeToString[resp.Rcode]
		answers = len(resp.Answer)
	}
	log.Printf("resolver:[%s] transport:[%s] qname:[%s] qtype:[%s] rcode:[%s] answers:[%d] err:[%v] duration:[%v]",
		resolver, transportType, domain, recordType, rcode, answers, err, dur)
}
