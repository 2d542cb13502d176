package tether_test

import (
	"math/rand/v2"
	"reflect"

	. "github.com/dogmatiq/tether"
	. "github.com/onsi/ginkgo"
	. "github.com/onsi/ginkgo/extensions/table"
	. "github.com/onsi/gomega"
)

var _ = Describe("func ResolveHosts()", func() {
	DescribeTable(
		"it resolves the host specification",
		func(spec HostSpec, expect []Endpoint) {
			endpoints, err := ResolveHosts(spec)
			Expect(err).ShouldNot(HaveOccurred())
			Expect(endpoints).To(Equal(expect))
		},
		Entry(
			"nil",
			nil,
			[]Endpoint{{Host: "localhost"}},
		),
		Entry(
			"host",
			Host("myhost"),
			[]Endpoint{{Host: "myhost"}},
		),
		Entry(
			"host with port",
			Host("myhost:1000"),
			[]Endpoint{{Host: "myhost", Port: "1000"}},
		),
		Entry(
			"host list with a single host",
			HostList{Host("myhost")},
			[]Endpoint{{Host: "myhost"}},
		),
		Entry(
			"host list with multiple hosts",
			Hosts("host1", "host2"),
			[]Endpoint{{Host: "host1"}, {Host: "host2"}},
		),
		Entry(
			"host list with ports",
			Hosts("host1:1000", "host2:2000"),
			[]Endpoint{
				{Host: "host1", Port: "1000"},
				{Host: "host2", Port: "2000"},
			},
		),
		Entry(
			"host list with endpoints",
			HostList{Endpoint{Host: "myhost", Port: "1000"}},
			[]Endpoint{{Host: "myhost", Port: "1000"}},
		),
		Entry(
			"host list with hosts and endpoints",
			HostList{
				Host("host1:1000"),
				Endpoint{Host: "host2", Scheme: "https", Path: "/prefix"},
			},
			[]Endpoint{
				{Host: "host1", Port: "1000"},
				{Host: "host2", Scheme: "https", Path: "/prefix"},
			},
		),
		Entry(
			"empty host list",
			HostList{},
			[]Endpoint{},
		),
		Entry(
			"endpoint",
			Endpoint{
				Host:       "myhost",
				Port:       "1000",
				User:       "<user>",
				Password:   "<password>",
				Attributes: map[string]any{"region": "<region>"},
			},
			[]Endpoint{
				{
					Host:       "myhost",
					Port:       "1000",
					User:       "<user>",
					Password:   "<password>",
					Attributes: map[string]any{"region": "<region>"},
				},
			},
		),
		Entry(
			"endpoint without a host",
			Endpoint{Port: "1000"},
			[]Endpoint{{Port: "1000"}},
		),
		Entry(
			"host with more than one colon",
			Host("myhost:1000:2000"),
			[]Endpoint{{Host: "myhost", Port: "1000:2000"}},
		),
		Entry(
			"host with a scheme",
			Host("http://myhost"),
			[]Endpoint{{Host: "http", Port: "//myhost"}},
		),
		Entry(
			"host with a trailing colon",
			Host("myhost:"),
			[]Endpoint{{Host: "myhost"}},
		),
	)

	It("returns an error if a host list contains a nested list", func() {
		_, err := ResolveHosts(
			HostList{
				Host("host1"),
				HostList{Host("host2")},
			},
		)
		Expect(err).To(MatchError(ErrInvalidHostConfig))
		Expect(err).To(MatchError(
			"cannot parse host configuration: element 1 of the host list is tether.HostList, expected a host string or endpoint",
		))
	})

	DescribeTable(
		"it returns an error if a host string has an empty host name",
		func(spec HostSpec, expect string) {
			_, err := ResolveHosts(spec)
			Expect(err).To(MatchError(ErrInvalidHostConfig))
			Expect(err).To(MatchError(expect))
		},
		Entry(
			"empty string",
			Host(""),
			`cannot parse host configuration: the host name in "" is empty`,
		),
		Entry(
			"port only",
			Host(":9200"),
			`cannot parse host configuration: the host name in ":9200" is empty`,
		),
		Entry(
			"host list",
			Hosts("myhost", ":9200"),
			`cannot parse host configuration: the host name in ":9200" is empty (element 1 of the host list)`,
		),
	)

	It("returns an error if a host list contains a nil element", func() {
		_, err := ResolveHosts(HostList{nil})
		Expect(err).To(MatchError(ErrInvalidHostConfig))
	})

	It("returns an error if the specification is not one of the known types", func() {
		type wrapped struct{ Endpoint }

		_, err := ResolveHosts(wrapped{})
		Expect(err).To(MatchError(ErrInvalidHostConfig))
	})

	It("does not modify the host list", func() {
		list := Hosts("host1", "host2", "host3")
		_, err := ResolveHosts(list, RandomizeHosts())
		Expect(err).ShouldNot(HaveOccurred())
		Expect(list).To(Equal(Hosts("host1", "host2", "host3")))
	})

	When("the hosts are randomized", func() {
		var list HostList

		BeforeEach(func() {
			list = HostList{
				Endpoint{Host: "host1"},
				Endpoint{Host: "host2"},
				Endpoint{Host: "host3"},
				Endpoint{Host: "host4"},
				Endpoint{Host: "host5"},
			}
		})

		ordered := []Endpoint{
			{Host: "host1"},
			{Host: "host2"},
			{Host: "host3"},
			{Host: "host4"},
			{Host: "host5"},
		}

		It("returns the same endpoints", func() {
			endpoints, err := ResolveHosts(list, RandomizeHosts())
			Expect(err).ShouldNot(HaveOccurred())
			Expect(endpoints).To(ConsistOf(ordered))
		})

		It("changes the order of the endpoints", func() {
			differs := false

			for seed := uint64(0); seed < 10; seed++ {
				endpoints, err := ResolveHosts(
					list,
					RandomizeHosts(),
					WithShuffleSource(rand.NewPCG(seed, seed)),
				)
				Expect(err).ShouldNot(HaveOccurred())
				Expect(endpoints).To(ConsistOf(ordered))

				if !reflect.DeepEqual(endpoints, ordered) {
					differs = true
				}
			}

			Expect(differs).To(BeTrue())
		})

		It("produces the same order given the same source", func() {
			first, err := ResolveHosts(
				list,
				RandomizeHosts(),
				WithShuffleSource(rand.NewPCG(1, 2)),
			)
			Expect(err).ShouldNot(HaveOccurred())

			second, err := ResolveHosts(
				list,
				RandomizeHosts(),
				WithShuffleSource(rand.NewPCG(1, 2)),
			)
			Expect(err).ShouldNot(HaveOccurred())

			Expect(second).To(Equal(first))
		})

		It("does not shuffle unless asked to", func() {
			endpoints, err := ResolveHosts(
				list,
				WithShuffleSource(rand.NewPCG(1, 2)),
			)
			Expect(err).ShouldNot(HaveOccurred())
			Expect(endpoints).To(Equal(ordered))
		})
	})
})
