package tasks

import "math/rand"

// sentenceBank is the built-in free-practice material used when no daily
// task is available.
var sentenceBank = []string{
	"children play cricket in an empty ground after finishing homework",
	"the cat sat on the mat and watched the birds fly away",
	"mother baked cookies for the school picnic tomorrow afternoon",
	"students read books quietly in the library every morning",
	"the dog ran across the park to fetch the red ball",
	"flowers bloom beautifully in the garden during spring season",
	"father drives the car carefully through the busy city streets",
	"birds sing sweet songs from the tall trees at dawn",
	"the teacher explained the lesson clearly to all students",
	"grandmother tells wonderful stories before bedtime every night",
	"friends played together happily in the playground after school",
	"the sun shines brightly on the green grass fields",
	"children learn new words from their favorite picture books",
	"the butterfly landed gently on the colorful garden flowers",
	"mother cooked delicious food for the family dinner tonight",
}

// RandomSentence picks one free-practice sentence.
func RandomSentence() string {
	return sentenceBank[rand.Intn(len(sentenceBank))]
}

// Sentences returns the full free-practice bank in order.
func Sentences() []string {
	out := make([]string, len(sentenceBank))
	copy(out, sentenceBank)
	return out
}
