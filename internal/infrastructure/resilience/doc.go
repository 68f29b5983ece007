/*
Package resilience provides a circuit breaker for calls to a remote server.

A Breaker counts consecutive failures. Once FailureThreshold is reached it
opens and rejects calls with ErrCircuitOpen until Cooldown has passed. It
then lets one probe through: success closes it, failure opens it again.

	Closed --[threshold failures]-> Open --[cooldown]-> Half-Open --[probe ok]-> Closed
	                                  ^                     |
	                                  +----[probe failed]---+

# Usage

	breaker := resilience.New(resilience.Settings{
		FailureThreshold: 5,
		Cooldown:         30 * time.Second,
	})

	err := breaker.Do(func() error {
		return call()
	})
*/
package resilience
