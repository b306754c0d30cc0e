package simulate

import "fmt"

// persona is one synthetic candidate profile with a canned answer bank.
// Strong personas answer with technical depth; weak ones stay vague so the
// simulation exercises both pass and fail paths of the level ladder.
type persona struct {
	name    string
	role    string
	skills  []string
	targets map[string]string
	project project
	answers []string
}

var personas = []persona{
	{
		name:   "Ava Strong",
		role:   "Backend Engineer",
		skills: []string{"go", "sql"},
		targets: map[string]string{
			"go":  "advanced",
			"sql": "intermediate",
		},
		project: project{
			Title:   "Atlas",
			Summary: "A billing ingestion pipeline processing nightly settlement files.",
		},
		answers: []string{
			"I have 6 years of experience building Go microservices on Kubernetes with Postgres and Kafka, and I led the migration of our billing platform to event-driven architecture.",
			"I designed and implemented the ingestion pipeline myself because the previous batch job could not scale; I added idempotent consumers, and test coverage went from 40% to 85%, which reduced settlement errors by 30%.",
			"Because goroutines are multiplexed onto OS threads by the scheduler, I use worker pools with bounded channels to control concurrency, and I profile contention with pprof before tuning.",
			"I would partition the table by settlement date because range scans dominate, add a covering index for the lookup path, and measure with EXPLAIN ANALYZE since optimizer estimates can mislead.",
			"For reliability I design for at-least-once delivery, therefore every consumer is idempotent; I also use circuit breakers so a slow dependency cannot exhaust the connection pool.",
			"I would benchmark both designs first because cache behavior depends on the access pattern, then choose the simpler architecture unless the numbers justify the complexity.",
		},
	},
	{
		name:   "Bran Vague",
		role:   "Engineer",
		skills: []string{"python"},
		project: project{
			Title:   "Reports",
			Summary: "Internal reporting scripts.",
		},
		answers: []string{
			"I do some coding sometimes.",
			"It was a thing at work.",
			"Not sure really.",
			"Maybe loops or something.",
			"I would google it.",
			"No idea.",
		},
	},
	{
		name:   "Cleo Mixed",
		role:   "Platform Engineer",
		skills: []string{"kubernetes"},
		targets: map[string]string{
			"kubernetes": "basic",
		},
		project: project{
			Title:   "Beacon",
			Summary: "An alerting service fanning out notifications to on-call rotations.",
		},
		answers: []string{
			"I have 3 years of experience with Kubernetes and Docker, mostly maintaining deployment pipelines and debugging cluster issues.",
			"I built the notification fan-out and added retries with backoff because the upstream pager API rate limits; delivery success improved measurably.",
			"Kubernetes schedules containers across nodes because it reconciles desired state, so I define resource requests and limits for every workload.",
			"It depends on the workload.",
			"I would check the events and logs first.",
			"Probably a deployment issue.",
		},
	},
}

// answerFor cycles through the persona's bank so long sessions keep
// producing plausible answers.
func (p persona) answerFor(turn int) string {
	if len(p.answers) == 0 {
		return fmt.Sprintf("Answer %d.", turn)
	}
	return p.answers[turn%len(p.answers)]
}

// personaFor assigns profiles round-robin with a unique candidate name.
func personaFor(i int) persona {
	p := personas[i%len(personas)]
	p.name = fmt.Sprintf("%s %d", p.name, i)
	return p
}
