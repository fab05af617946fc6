// Command readaloud is the console front end for read-aloud practice:
// spoken input is typed one utterance per line, standing in for the
// platform speech recognizer.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"sync"
	"time"

	"readaloud/internal/audio"
	"readaloud/internal/challenge"
	"readaloud/internal/config"
	"readaloud/internal/correction"
	"readaloud/internal/database"
	"readaloud/internal/engine"
	"readaloud/internal/models"
	"readaloud/internal/repository"
	"readaloud/internal/service"
	"readaloud/internal/speech"
	"readaloud/internal/tasks"
	"readaloud/internal/tokenizer"
	"readaloud/internal/warmup"
)

func main() {
	practiceCmd := flag.NewFlagSet("practice", flag.ExitOnError)
	practiceSentence := practiceCmd.String("sentence", "", "Sentence to read (default: random from the bank)")
	practiceFull := practiceCmd.Bool("full", false, "Read the whole sentence in one utterance")

	challengeCmd := flag.NewFlagSet("challenge", flag.ExitOnError)
	warmupCmd := flag.NewFlagSet("warmup", flag.ExitOnError)
	statsCmd := flag.NewFlagSet("stats", flag.ExitOnError)

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	cfg := config.Load()

	db, err := database.InitializeWithConfig(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	if err := db.EnsureSchema(); err != nil {
		log.Fatalf("Failed to create schema: %v", err)
	}

	warmupRepo := repository.NewWarmupRepository(db)
	challengeRepo := repository.NewChallengeRepository(db)
	client := tasks.NewClient(cfg.TaskAPIBaseURL, cfg.StudentToken)

	studentID := "local"
	if cfg.StudentToken != "" {
		id, err := client.StudentID()
		if err != nil {
			log.Fatalf("Invalid student token: %v", err)
		}
		studentID = id
	}

	queue, err := warmup.NewQueue(warmupRepo, studentID)
	if err != nil {
		log.Fatalf("Failed to load warmup queue: %v", err)
	}

	app := &app{
		cfg:           cfg,
		studentID:     studentID,
		client:        client,
		queue:         queue,
		challengeRepo: challengeRepo,
		progress:      service.NewProgressService(warmupRepo, challengeRepo),
		input:         newConsoleInput(os.Stdin),
		speaker:       consoleSpeaker{},
	}

	switch os.Args[1] {
	case "practice":
		practiceCmd.Parse(os.Args[2:])
		app.runPractice(*practiceSentence, *practiceFull)

	case "challenge":
		challengeCmd.Parse(os.Args[2:])
		app.runChallenge()

	case "warmup":
		warmupCmd.Parse(os.Args[2:])
		app.runWarmup()

	case "stats":
		statsCmd.Parse(os.Args[2:])
		app.printStats()

	default:
		printUsage()
		os.Exit(1)
	}
}

type app struct {
	cfg           *config.Config
	studentID     string
	client        *tasks.Client
	queue         *warmup.Queue
	challengeRepo *repository.ChallengeRepository
	progress      *service.ProgressService
	input         *consoleInput
	speaker       audio.Speaker
}

// runPractice reads one sentence, then walks the missed words through
// the correction dialog.
func (a *app) runPractice(sentence string, full bool) {
	if sentence == "" {
		sentence = tasks.RandomSentence()
	}

	mode := models.WordByWord
	source := "practice"
	if full {
		mode = models.FullUtterance
	}

	fmt.Printf("Read aloud: %q\n", sentence)
	if mode == models.WordByWord {
		fmt.Println("One word per line. Each word has a few seconds before it counts as missed.")
	} else {
		fmt.Println("Type the whole sentence on one line.")
	}

	summary, err := a.readSentence(sentence, mode, source)
	if err != nil {
		log.Fatalf("Practice failed: %v", err)
	}

	fmt.Printf("\nAccuracy: %d%% (%d/%d words)\n", summary.Accuracy, summary.CorrectCount, summary.TotalTokens)
	if len(summary.WrongWords) > 0 {
		fmt.Printf("Words to work on: %s\n", strings.Join(summary.WrongWords, ", "))
		a.correctWords(summary.WrongWords)
	}
}

// readSentence runs one practice session to completion and records
// misses into the warmup queue.
func (a *app) readSentence(sentence string, mode models.Mode, source string) (models.SessionSummary, error) {
	session := speech.NewSession(a.input.factory(), speech.Config{})
	done := make(chan models.SessionSummary, 1)

	eng := engine.New(session, engine.Config{
		Mode:        mode,
		WordTimeout: a.cfg.WordTimeout,
		MissSource:  source,
	}, engine.Callbacks{
		OnFeedback: func(message string) { fmt.Println(message) },
		OnMiss: func(word, missSource string) {
			if err := a.queue.RecordMiss(word, time.Now(), missSource); err != nil {
				log.Printf("Failed to record miss for %q: %v", word, err)
			}
		},
		OnError: func(kind speech.ErrorKind) {
			fmt.Printf("Recognition trouble: %s\n", kind)
		},
		OnComplete: func(summary models.SessionSummary) { done <- summary },
	})

	if err := eng.Start(tokenizer.Tokenize(sentence)); err != nil {
		return models.SessionSummary{}, err
	}
	return <-done, nil
}

// correctWords runs the retry dialog and feeds the outcomes back into
// the warmup queue.
func (a *app) correctWords(words []string) {
	fmt.Println("\nLet's fix those words. Repeat each one after the prompt.")

	tokens := tokenizer.Tokenize(strings.Join(words, " "))
	listener := speech.NewSession(a.input.factory(), speech.Config{})
	done := make(chan struct{})

	controller := correction.New(a.speaker, listener, correction.Config{
		ListenTimeout: a.cfg.ListenTimeout,
	}, correction.Callbacks{
		OnPrompt: func(message string) { fmt.Println(message) },
		OnWordDone: func(word models.Token, corrected bool) {
			now := time.Now()
			var err error
			if corrected {
				err = a.queue.RecordAttempt(word.NormalizedText, now, true)
			} else {
				err = a.queue.RecordMiss(word.NormalizedText, now, "correction")
			}
			if err != nil {
				log.Printf("Failed to update warmup queue for %q: %v", word.SurfaceText, err)
			}
		},
		OnComplete: func(corrected, total int) {
			fmt.Printf("Corrected %d of %d words.\n", corrected, total)
			close(done)
		},
	})

	if err := controller.Start(tokens); err != nil {
		log.Printf("Correction dialog failed: %v", err)
		return
	}
	<-done
}

// runChallenge fetches today's tasks and runs the first one not yet
// completed, sentence by sentence.
func (a *app) runChallenge() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	all, err := a.client.DailyTasks(ctx)
	if err != nil {
		log.Fatalf("Failed to fetch daily tasks: %v", err)
	}

	today := time.Now()
	due := tasks.DueOn(all, today)
	if len(due) == 0 {
		fmt.Println("No tasks due today. Try `readaloud practice` instead.")
		return
	}

	var task *models.DailyTask
	for i := range due {
		completed, err := a.challengeRepo.IsCompletedToday(a.studentID, due[i].ID, today)
		if err != nil {
			log.Fatalf("Failed to check completion: %v", err)
		}
		if !completed {
			task = &due[i]
			break
		}
	}

	// A completed task can be re-run, but only as practice.
	practiceRun := task == nil
	if practiceRun {
		task = &due[0]
		fmt.Println("Every task due today is already completed. Running it again for practice.")
	}

	fmt.Printf("Daily challenge: %s (%d sentences, %d%% accuracy target, %v limit)\n",
		task.Title, len(task.Sentences), task.TargetAccuracy, task.TimeLimit())

	tracker, err := challenge.NewTracker(*task, a.studentID)
	if err != nil {
		log.Fatalf("Failed to start challenge: %v", err)
	}

	for {
		sentence, ok := tracker.NextSentence()
		if !ok {
			break
		}
		fmt.Printf("\nRead aloud: %q\n", sentence)

		summary, err := a.readSentence(sentence, models.FullUtterance, "daily")
		if err != nil {
			log.Fatalf("Challenge failed: %v", err)
		}
		if err := tracker.RecordSentence(summary.Accuracy); err != nil {
			log.Fatalf("Failed to record sentence: %v", err)
		}
	}

	result, err := tracker.Finalize()
	if err != nil {
		log.Fatalf("Failed to finalize challenge: %v", err)
	}

	fmt.Printf("\nChallenge accuracy: %d%% in %v\n", result.Accuracy, result.TimeSpent.Round(time.Second))
	if practiceRun {
		fmt.Println("Practice run only: stars were already awarded today.")
		return
	}
	if _, err := a.challengeRepo.RecordCompletion(result); err != nil {
		log.Fatalf("Failed to record completion: %v", err)
	}
	if result.StarsAwarded > 0 {
		fmt.Printf("You earned %d stars!\n", result.StarsAwarded)
	} else {
		fmt.Printf("No stars this time; you need %d%% accuracy. Keep practicing!\n", task.TargetAccuracy)
	}
}

// runWarmup walks the warmup queue words still available today through
// the correction dialog.
func (a *app) runWarmup() {
	now := time.Now()
	prompts := a.promptCache()

	var words []string
	for _, entry := range a.queue.Entries() {
		if a.queue.IsMasteredAndEvictable(entry.Word) {
			if err := a.queue.Remove(entry.Word); err != nil {
				log.Printf("Failed to evict %q: %v", entry.Word, err)
			}
			if prompts != nil {
				if err := prompts.Remove(entry.Word); err != nil {
					log.Printf("Failed to drop prompt for %q: %v", entry.Word, err)
				}
			}
			fmt.Printf("Mastered and retired: %s\n", entry.Word)
			continue
		}
		if a.queue.CanPracticeToday(entry.Word, now) {
			words = append(words, entry.Word)
		}
	}

	if len(words) == 0 {
		fmt.Println("No warmup words available today. Come back tomorrow!")
		return
	}

	if prompts != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		if err := prompts.Warm(ctx, words); err != nil {
			log.Printf("Prompt audio unavailable, continuing without it: %v", err)
		}
		cancel()
	}

	fmt.Printf("Warmup: %d words to repeat.\n", len(words))

	tokens := tokenizer.Tokenize(strings.Join(words, " "))
	listener := speech.NewSession(a.input.factory(), speech.Config{})
	done := make(chan struct{})

	controller := correction.New(a.speaker, listener, correction.Config{
		ListenTimeout: a.cfg.ListenTimeout,
	}, correction.Callbacks{
		OnPrompt: func(message string) { fmt.Println(message) },
		OnWordDone: func(word models.Token, corrected bool) {
			if err := a.queue.RecordAttempt(word.NormalizedText, time.Now(), corrected); err != nil {
				log.Printf("Failed to record attempt for %q: %v", word.SurfaceText, err)
			}
		},
		OnComplete: func(corrected, total int) {
			fmt.Printf("Warmup done: %d of %d words correct.\n", corrected, total)
			close(done)
		},
	})

	if err := controller.Start(tokens); err != nil {
		log.Fatalf("Warmup failed: %v", err)
	}
	<-done
}

// promptCache opens the MP3 prompt cache, or returns nil when the audio
// directory cannot be prepared.
func (a *app) promptCache() *audio.PromptCache {
	if a.cfg.AudioDir == "" {
		return nil
	}
	if err := os.MkdirAll(a.cfg.AudioDir, 0o755); err != nil {
		log.Printf("Failed to prepare audio directory %s: %v", a.cfg.AudioDir, err)
		return nil
	}
	return audio.NewPromptCache(a.cfg.AudioDir)
}

func (a *app) printStats() {
	summary, err := a.progress.Summary(a.studentID)
	if err != nil {
		log.Fatalf("Failed to load progress: %v", err)
	}

	fmt.Printf("Student: %s\n", summary.StudentID)
	fmt.Printf("Total stars: %d\n", summary.TotalStars)
	fmt.Printf("Warmup queue: %d words\n", summary.WarmupSize)
	if len(summary.HardWords) > 0 {
		fmt.Printf("Hard words: %s\n", strings.Join(summary.HardWords, ", "))
	}
	if len(summary.RecentResults) > 0 {
		fmt.Println("Recent challenges:")
		for _, result := range summary.RecentResults {
			fmt.Printf("  task %d: %d%% accuracy, %d stars (%s)\n",
				result.TaskID, result.Accuracy, result.StarsAwarded,
				result.CompletedAt.Format("2006-01-02"))
		}
	}
}

// consoleInput multiplexes stdin lines to recognition capabilities: one
// line is one final transcript.
type consoleInput struct {
	lines chan string
}

func newConsoleInput(r *os.File) *consoleInput {
	input := &consoleInput{lines: make(chan string)}
	go func() {
		scanner := bufio.NewScanner(r)
		for scanner.Scan() {
			input.lines <- scanner.Text()
		}
		close(input.lines)
	}()
	return input
}

func (in *consoleInput) factory() speech.Factory {
	return func(events speech.Events) (speech.Capability, error) {
		return &consoleCapability{input: in, events: events}, nil
	}
}

// consoleCapability reads one line per listening session.
type consoleCapability struct {
	input   *consoleInput
	events  speech.Events
	mu      sync.Mutex
	active  bool
	session int
}

func (c *consoleCapability) Start() error {
	c.mu.Lock()
	if c.active {
		c.mu.Unlock()
		return nil
	}
	c.active = true
	c.session++
	session := c.session
	c.mu.Unlock()

	if c.events.OnStart != nil {
		c.events.OnStart()
	}

	go func() {
		line, ok := <-c.input.lines
		c.mu.Lock()
		if !c.active || c.session != session {
			c.mu.Unlock()
			return
		}
		c.active = false
		c.mu.Unlock()

		if !ok {
			if c.events.OnError != nil {
				c.events.OnError(speech.ErrorAborted)
			}
			return
		}
		if c.events.OnFinalTranscript != nil {
			c.events.OnFinalTranscript(line)
		}
		if c.events.OnEnd != nil {
			c.events.OnEnd()
		}
	}()
	return nil
}

func (c *consoleCapability) Stop() {
	c.mu.Lock()
	c.active = false
	c.mu.Unlock()
}

func (c *consoleCapability) Abort() {
	c.Stop()
}

// consoleSpeaker prints prompts instead of playing audio.
type consoleSpeaker struct{}

func (consoleSpeaker) Speak(text string, onDone func()) {
	fmt.Printf("(voice) %s\n", text)
	if onDone != nil {
		onDone()
	}
}

func (consoleSpeaker) Cancel() {}

func printUsage() {
	fmt.Println("readaloud - speech practice from the terminal")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  readaloud practice [options]   Read one sentence word by word")
	fmt.Println("  readaloud challenge            Run today's daily challenge")
	fmt.Println("  readaloud warmup               Repeat previously missed words")
	fmt.Println("  readaloud stats                Show stars and warmup progress")
	fmt.Println()
	fmt.Println("Practice Options:")
	fmt.Println("  -sentence <text>   Sentence to read (default: random from the bank)")
	fmt.Println("  -full              Read the whole sentence in one utterance")
	fmt.Println()
	fmt.Println("Environment Variables:")
	fmt.Println("  DB_TYPE          Database type: sqlite, postgres, or mysql (default: sqlite)")
	fmt.Println("  DB_PATH          SQLite database path (default: ./readaloud.db)")
	fmt.Println("  DATABASE_URL     PostgreSQL or MySQL connection URL")
	fmt.Println("  TASK_API_URL     Daily task backend base URL")
	fmt.Println("  STUDENT_TOKEN    Student JWT issued by the backend")
	fmt.Println("  AUDIO_DIR        Directory for cached word prompts (default: ./audio)")
	fmt.Println("  WORD_TIMEOUT     Per-word listening window (default: 5s)")
	fmt.Println("  LISTEN_TIMEOUT   Correction listening window (default: 6s)")
}
