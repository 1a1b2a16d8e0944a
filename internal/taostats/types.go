package taostats

// envelope is the taostats API response wrapper: a pagination block plus a
// data array, even for single-object lookups.
type envelope[T any] struct {
	Pagination *Pagination `json:"pagination"`
	Data       []T         `json:"data"`
}

// Pagination describes one page of a taostats listing.
type Pagination struct {
	CurrentPage int `json:"current_page"`
	PerPage     int `json:"per_page"`
	TotalItems  int `json:"total_items"`
	TotalPages  int `json:"total_pages"`
}

// KeyRef is an account key reference as the registry serializes it.
type KeyRef struct {
	SS58 string `json:"ss58"`
	Hex  string `json:"hex,omitempty"`
}

// Axon is the advertised serving endpoint of a neuron.
type Axon struct {
	IP       string `json:"ip"`
	Port     int    `json:"port"`
	Protocol int    `json:"protocol"`
}

// Subnet is the raw subnet metadata row.
type Subnet struct {
	Netuid                 int     `json:"netuid"`
	Owner                  *KeyRef `json:"owner"`
	MaxNeurons             int     `json:"max_neurons"`
	ActiveKeys             int     `json:"active_keys"`
	Validators             int     `json:"validators"`
	ActiveValidators       int     `json:"active_validators"`
	ActiveMiners           int     `json:"active_miners"`
	Tempo                  int     `json:"tempo"`
	Difficulty             float64 `json:"difficulty"`
	Emission               float64 `json:"emission"`
	NeuronRegistrationCost float64 `json:"neuron_registration_cost"`
}

// Neuron is one raw metagraph row.
type Neuron struct {
	UID             int     `json:"uid"`
	Hotkey          KeyRef  `json:"hotkey"`
	Coldkey         KeyRef  `json:"coldkey"`
	Stake           float64 `json:"stake"`
	Trust           float64 `json:"trust"`
	Consensus       float64 `json:"consensus"`
	Incentive       float64 `json:"incentive"`
	Dividends       float64 `json:"dividends"`
	Emission        float64 `json:"emission"`
	Active          bool    `json:"active"`
	ValidatorPermit bool    `json:"validator_permit"`
	DailyReward     float64 `json:"daily_reward"`
	Axon            *Axon   `json:"axon"`
}

// ProbeResult summarizes a connectivity probe for the test-connection
// endpoint.
type ProbeResult struct {
	SubnetFound   bool `json:"subnet_found"`
	HasPagination bool `json:"has_pagination"`
	HasData       bool `json:"has_data"`
	DataCount     int  `json:"data_count"`
}
