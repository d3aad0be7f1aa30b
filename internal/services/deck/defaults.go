package deck

// defaultQuestions is the bundled question deck
var defaultQuestions = []string{
	"What's the next big reality TV show? '_________ Wars.'",
	"In my autobiography, the title of the first chapter will be 'My Love Affair with ________.'",
	"Instead of solving world hunger, I've decided to focus my efforts on ____________.",
	"The latest scientific discovery: ____________ causes global warming.",
	"What's the secret ingredient in my award-winning recipe for ____________?",
	"The government has declared ____________ a public health hazard.",
	"When I'm feeling down, I cheer myself up by thinking about ____________.",
	"The new self-help book that's sweeping the nation: 'Unlocking the Power of ____________.'",
	"What's the most inappropriate time to play the Macarena?",
	"My therapist says my issues stem from my unhealthy obsession with ____________.",
	"Forget diamonds, ____________ is a girl's best friend.",
	"The school talent show was won by a stunning performance of ____________.",
	"If I could bring one historical figure back to life, it would be ____________.",
	"Instead of a handshake, I greet people with ____________.",
	"The best way to ruin a family dinner is to bring up ____________.",
	"I like my coffee like I like my relationships: filled with ____________.",
	"What's the latest fashion trend? ____________-inspired accessories.",
	"If I could have any superpower, it would be the ability to control ____________.",
	"My autobiography will be titled 'The Chronicles of ____________.'",
	"The secret to a long and happy life is a daily dose of ____________.",
}

// defaultAnswers is the bundled answer deck. Slot 3 holds a replacement card;
// order and length are otherwise fixed, since seeds deal by index.
var defaultAnswers = []string{
	"A bucket of fried chicken.",
	"Uncontrollable flatulence.",
	"The inevitable heat death of the universe.",
	"A suspiciously confident llama.",
	"Puppies!",
	"Ruthless mockery.",
	"Grandma's secret moonshine recipe.",
	"A lifetime supply of bacon.",
	"Inappropriate yodeling.",
	"A magical unicorn with a dark secret.",
	"The force.",
	"A monkey smoking a cigar.",
	"My browser history.",
	"A robot uprising.",
	"Nuclear fallout.",
	"Vegan options at an all-you-can-eat BBQ.",
	"A flaming bag of dog poop.",
	"The ghost of Elvis.",
	"An awkward family photo.",
	"The sweet release of death.",
}
