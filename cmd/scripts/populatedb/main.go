package main

import (
	"context"
	"fmt"
	"time"

	"github.com/jessevdk/go-flags"
	"github.com/locallibrary/library/pkg/authors"
	"github.com/locallibrary/library/pkg/binder"
	"github.com/locallibrary/library/pkg/bookinstances"
	"github.com/locallibrary/library/pkg/books"
	"github.com/locallibrary/library/pkg/catalog"
	"github.com/locallibrary/library/pkg/config"
	"github.com/locallibrary/library/pkg/database"
	"github.com/locallibrary/library/pkg/genres"
	"github.com/locallibrary/library/pkg/migrations"
	"github.com/locallibrary/library/pkg/models"
	"github.com/robinjoseph08/golib/logger"
	"github.com/uptrace/bun"
)

type sampleAuthor struct {
	first, family string
	born, died    string
}

type sampleBook struct {
	title, author, summary, isbn string
	genres                       []string
}

type sampleCopy struct {
	book, imprint, status string
}

var sampleAuthors = []sampleAuthor{
	{"Patrick", "Rothfuss", "1973-06-06", ""},
	{"Ben", "Bova", "1932-11-08", ""},
	{"Isaac", "Asimov", "1920-01-02", "1992-04-06"},
	{"Bob", "Billings", "", ""},
	{"Jim", "Jones", "1971-12-16", ""},
}

var sampleGenres = []string{"Fantasy", "Science Fiction", "French Poetry"}

var sampleBooks = []sampleBook{
	{
		"The Name of the Wind (The Kingkiller Chronicle, #1)", "Rothfuss",
		"I have stolen princesses back from sleeping barrow kings. I burned down the town of Trebon. I have spent the night with Felurian and left with both my sanity and my life.",
		"9781473211896", []string{"Fantasy"},
	},
	{
		"The Wise Man's Fear (The Kingkiller Chronicle, #2)", "Rothfuss",
		"Picking up the tale of Kvothe Kingkiller once again, we follow him into exile, into political intrigue, courtship, adventure, love and magic.",
		"9788401352836", []string{"Fantasy"},
	},
	{
		"The Slow Regard of Silent Things (Kingkiller Chronicle)", "Rothfuss",
		"Deep below the University, there is a dark place. Few people know of it: a broken web of ancient passageways and abandoned rooms.",
		"9780756411336", []string{"Fantasy"},
	},
	{
		"Apes and Angels", "Bova",
		"Humankind headed out to the stars not for conquest, nor exploration, nor even for curiosity. Humans went to the stars in a desperate crusade to save intelligent life wherever they found it.",
		"9780765379528", []string{"Science Fiction"},
	},
	{
		"Death Wave", "Bova",
		"In Ben Bova's previous novel New Earth, Jordan Kell led the first human mission beyond the solar system.",
		"9780765379504", []string{"Science Fiction"},
	},
	{"Test Book 1", "Billings", "Summary of test book 1", "ISBN111111", []string{"Fantasy", "Science Fiction"}},
	{"Test Book 2", "Jones", "Summary of test book 2", "ISBN222222", nil},
}

var sampleCopies = []sampleCopy{
	{"The Name of the Wind (The Kingkiller Chronicle, #1)", "London Gollancz, 2014.", models.BookInstanceStatusAvailable},
	{"The Wise Man's Fear (The Kingkiller Chronicle, #2)", "Gollancz, 2011.", models.BookInstanceStatusLoaned},
	{"The Slow Regard of Silent Things (Kingkiller Chronicle)", "Gollancz, 2015.", ""},
	{"Apes and Angels", "New York Tom Doherty Associates, 2016.", models.BookInstanceStatusAvailable},
	{"Apes and Angels", "New York Tom Doherty Associates, 2016.", models.BookInstanceStatusAvailable},
	{"Apes and Angels", "New York Tom Doherty Associates, 2016.", models.BookInstanceStatusAvailable},
	{"Death Wave", "New York, NY Tom Doherty Associates, LLC, 2015.", models.BookInstanceStatusAvailable},
	{"Death Wave", "New York, NY Tom Doherty Associates, LLC, 2015.", models.BookInstanceStatusMaintenance},
	{"Death Wave", "New York, NY Tom Doherty Associates, LLC, 2015.", models.BookInstanceStatusLoaned},
	{"Test Book 1", "Imprint XXX2", ""},
	{"Test Book 2", "Imprint XXX3", ""},
}

func main() {
	ctx := context.Background()
	log := logger.New()

	var opts struct {
		Reset bool `short:"r" long:"reset" description:"Delete every catalog record before seeding"`
	}

	_, err := flags.Parse(&opts)
	if err != nil {
		log.Err(err).Fatal("flags parse error")
	}

	cfg, err := config.New()
	if err != nil {
		log.Err(err).Fatal("config error")
	}

	db, err := database.New(cfg)
	if err != nil {
		log.Err(err).Fatal("database error")
	}

	_, err = migrations.BringUpToDate(ctx, db)
	if err != nil {
		log.Err(err).Fatal("migrations error")
	}

	if opts.Reset {
		err = catalog.NewService(db).Reset(ctx)
		if err != nil {
			log.Err(err).Fatal("reset error")
		}
		log.Info("catalog reset")
	}

	err = populate(ctx, db)
	if err != nil {
		log.Err(err).Fatal("populate error")
	}

	counts, err := catalog.NewService(db).Counts(ctx)
	if err != nil {
		log.Err(err).Fatal("count error")
	}
	fmt.Printf("Books: %d\nCopies: %d (%d available)\nAuthors: %d\nGenres: %d\n",
		counts.Books, counts.Copies, counts.AvailableCopies, counts.Authors, counts.Genres)

	err = db.Close()
	if err != nil {
		log.Err(err).Error("database close error")
	}
}

// populate stores the sample records the same way the forms would: text is
// escaped before it is saved.
func populate(ctx context.Context, db *bun.DB) error {
	authorService := authors.NewService(db)
	genreService := genres.NewService(db)
	bookService := books.NewService(db)
	bookInstanceService := bookinstances.NewService(db)

	authorIDs := map[string]string{}
	for _, sa := range sampleAuthors {
		born, err := binder.ParseDate(sa.born)
		if err != nil {
			return err
		}
		died, err := binder.ParseDate(sa.died)
		if err != nil {
			return err
		}
		author := &models.Author{
			FirstName:   binder.Escape(sa.first),
			FamilyName:  binder.Escape(sa.family),
			DateOfBirth: born,
			DateOfDeath: died,
		}
		if err := authorService.CreateAuthor(ctx, author); err != nil {
			return err
		}
		authorIDs[sa.family] = author.ID
	}

	genreIDs := map[string]string{}
	for _, name := range sampleGenres {
		genre, _, err := genreService.FindOrCreateGenre(ctx, binder.Escape(name))
		if err != nil {
			return err
		}
		genreIDs[name] = genre.ID
	}

	bookIDs := map[string]string{}
	for _, sb := range sampleBooks {
		book := &models.Book{
			Title:    binder.Escape(sb.title),
			AuthorID: authorIDs[sb.author],
			Summary:  binder.Escape(sb.summary),
			ISBN:     binder.Escape(sb.isbn),
			GenreIDs: []string{},
		}
		for _, g := range sb.genres {
			book.GenreIDs = append(book.GenreIDs, genreIDs[g])
		}
		if err := bookService.CreateBook(ctx, book); err != nil {
			return err
		}
		bookIDs[sb.title] = book.ID
	}

	for _, sc := range sampleCopies {
		instance := &models.BookInstance{
			BookID:  bookIDs[sc.book],
			Imprint: binder.Escape(sc.imprint),
			Status:  sc.status,
		}
		if sc.status == models.BookInstanceStatusLoaned {
			instance.DueBack = time.Now().AddDate(0, 0, 14)
		}
		if err := bookInstanceService.CreateBookInstance(ctx, instance); err != nil {
			return err
		}
	}

	return nil
}
